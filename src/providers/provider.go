package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AfricaChange/AfricaChange/src/types"
)

var (
	ErrUnknownProvider = errors.New("unsupported payment provider")
	// ErrUnknownStatus is a hard error: a provider status outside the
	// mapping table is never passed through silently.
	ErrUnknownStatus = errors.New("unrecognized provider status")
	ErrMissingConfig = errors.New("missing provider credentials")
)

type InitiateParams struct {
	Amount    float64
	Phone     string
	Reference string
	ReturnURL string
}

type InitiateResult struct {
	PaymentURL        string
	ProviderReference string
}

// Callback is a provider callback normalized into the system vocabulary.
type Callback struct {
	Reference string
	Status    types.TransactionStatus
	EventType string
	Nonce     *string
}

// Provider is the capability set every mobile-money rail implements. New
// providers plug in here without touching the orchestrator.
type Provider interface {
	Name() string
	// SignatureHeader names the HTTP header carrying the callback
	// signature for this rail.
	SignatureHeader() string
	Initiate(ctx context.Context, p InitiateParams) (*InitiateResult, error)
	// VerifyCallback authenticates a raw inbound callback body against its
	// signature header. Must run before any business logic.
	VerifyCallback(raw []byte, signature string) bool
	// Normalize extracts the reference, nonce and mapped status from a
	// verified callback payload.
	Normalize(payload types.JSONB) (*Callback, error)
}

func ForName(name string) (Provider, error) {
	switch strings.ToLower(name) {
	case "orange":
		return NewOrangeProvider()
	case "wave":
		return NewWaveProvider()
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
}

func payloadString(payload types.JSONB, keys ...string) string {
	for _, k := range keys {
		if v, ok := payload[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
