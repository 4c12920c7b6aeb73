package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversionStatusTransitions(t *testing.T) {
	assert.True(t, CONVERSION_PENDING.CanTransition(CONVERSION_IN_PROGRESS))
	assert.False(t, CONVERSION_PENDING.CanTransition(CONVERSION_PAID))
	assert.False(t, CONVERSION_PENDING.CanTransition(CONVERSION_FAILED))

	assert.True(t, CONVERSION_IN_PROGRESS.CanTransition(CONVERSION_PAID))
	assert.True(t, CONVERSION_IN_PROGRESS.CanTransition(CONVERSION_FAILED))
	assert.False(t, CONVERSION_IN_PROGRESS.CanTransition(CONVERSION_PENDING))

	// Terminal states never move again.
	for _, s := range []ConversionStatus{CONVERSION_PAID, CONVERSION_FAILED} {
		for _, to := range []ConversionStatus{CONVERSION_PENDING, CONVERSION_IN_PROGRESS, CONVERSION_PAID, CONVERSION_FAILED} {
			assert.Falsef(t, s.CanTransition(to), "%s -> %s should be rejected", s, to)
		}
	}
}

func TestConversionStatusTerminal(t *testing.T) {
	assert.False(t, CONVERSION_PENDING.Terminal())
	assert.False(t, CONVERSION_IN_PROGRESS.Terminal())
	assert.True(t, CONVERSION_PAID.Terminal())
	assert.True(t, CONVERSION_FAILED.Terminal())
}

func TestTransactionStatusTransitions(t *testing.T) {
	assert.True(t, TRANSACTION_PENDING.CanTransition(TRANSACTION_VALID))
	assert.True(t, TRANSACTION_PENDING.CanTransition(TRANSACTION_FAILED))
	assert.True(t, TRANSACTION_PENDING.CanTransition(TRANSACTION_BLOCKED))
	assert.False(t, TRANSACTION_PENDING.CanTransition(TRANSACTION_REFUNDED))

	// rembourse is only reachable from valide.
	assert.True(t, TRANSACTION_VALID.CanTransition(TRANSACTION_REFUNDED))
	assert.False(t, TRANSACTION_FAILED.CanTransition(TRANSACTION_REFUNDED))
	assert.False(t, TRANSACTION_BLOCKED.CanTransition(TRANSACTION_REFUNDED))

	for _, to := range []TransactionStatus{TRANSACTION_PENDING, TRANSACTION_VALID, TRANSACTION_FAILED, TRANSACTION_BLOCKED, TRANSACTION_REFUNDED} {
		assert.Falsef(t, TRANSACTION_REFUNDED.CanTransition(to), "rembourse -> %s should be rejected", to)
		assert.Falsef(t, TRANSACTION_BLOCKED.CanTransition(to), "bloque -> %s should be rejected", to)
	}
}

func TestTransactionStatusTerminal(t *testing.T) {
	assert.False(t, TRANSACTION_PENDING.Terminal())
	assert.True(t, TRANSACTION_VALID.Terminal())
	assert.True(t, TRANSACTION_FAILED.Terminal())
	assert.True(t, TRANSACTION_BLOCKED.Terminal())
	assert.True(t, TRANSACTION_REFUNDED.Terminal())
}
