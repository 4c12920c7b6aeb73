package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/AfricaChange/AfricaChange/src/config"
	"github.com/AfricaChange/AfricaChange/src/models"
	"github.com/AfricaChange/AfricaChange/src/providers"
	"github.com/AfricaChange/AfricaChange/src/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CallbackValidation carries the locked transaction a callback refers to.
// Replayed means the callback was already durably recorded: the caller
// must skip all financial effects and answer as if it had succeeded.
type CallbackValidation struct {
	Transaction *models.Transaction
	Replayed    bool
}

// ValidateCallback is the mandatory funnel for every inbound provider
// callback. It runs inside the caller's transaction and enforces, in
// order: nonce replay, transaction existence, terminal-state idempotence,
// the freshness window, and the (reference, provider, event_type)
// uniqueness constraint. The constraint, not the nonce check, is the
// final backstop since not all providers supply nonces.
func ValidateCallback(tx *gorm.DB, reference, provider string, payload types.JSONB, nonce *string, ip, eventType string) (*CallbackValidation, error) {
	if nonce != nil {
		var seen int64
		if err := tx.
			Model(&models.PaymentEvent{}).
			Where("nonce = ?", *nonce).
			Count(&seen).
			Error; err != nil {
			return nil, fmt.Errorf("failed to check nonce: %w", err)
		}
		if seen > 0 {
			return nil, ErrReplayDetected
		}
	}

	var transaction models.Transaction
	if err := tx.
		Clauses(clause.Locking{
			Strength: "UPDATE",
			Table:    clause.Table{Name: clause.CurrentTable},
		}).
		Where(&models.Transaction{Reference: reference}).
		First(&transaction).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownTransaction
		}
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	if transaction.Status.Terminal() {
		return nil, ErrAlreadyFinalized
	}

	if transaction.CreatedAt.Before(time.Now().UTC().Add(-config.CallbackWindow())) {
		return nil, ErrStaleCallback
	}

	event := models.PaymentEvent{
		TransactionReference: reference,
		Provider:             provider,
		EventType:            eventType,
		Nonce:                nonce,
		Payload:              payload,
		IPAddress:            ip,
	}
	// The insert runs under a savepoint: a unique violation aborts the
	// surrounding transaction otherwise, and the duplicate still needs
	// classifying.
	if err := tx.SavePoint("payment_event").Error; err != nil {
		return nil, fmt.Errorf("failed to create savepoint: %w", err)
	}
	if err := tx.Create(&event).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to record payment event: %w", err)
		}
		if err := tx.RollbackTo("payment_event").Error; err != nil {
			return nil, fmt.Errorf("failed to roll back savepoint: %w", err)
		}
		if nonce != nil {
			var prior int64
			if err := tx.
				Model(&models.PaymentEvent{}).
				Where("transaction_reference = ? AND provider = ? AND event_type = ?", reference, provider, eventType).
				Count(&prior).
				Error; err != nil {
				return nil, fmt.Errorf("failed to classify duplicate event: %w", err)
			}
			if prior == 0 {
				// The composite key is free, so the collision was the
				// nonce index: a concurrent replay that slipped past the
				// advisory count, not a redelivery.
				return nil, ErrReplayDetected
			}
		}
		// Already durably recorded by an earlier delivery; idempotent
		// no-op for the caller.
		return &CallbackValidation{Transaction: &transaction, Replayed: true}, nil
	}

	return &CallbackValidation{Transaction: &transaction}, nil
}

// ProcessCallback runs the entire callback unit of work: validation,
// risk scoring and gating, status finalization, payment/conversion
// updates and the balanced ledger pair. Either everything commits or
// nothing does. Alerts fire only after a successful commit.
func ProcessCallback(db *gorm.DB, provider providers.Provider, cb *providers.Callback, payload types.JSONB, ip string) (*models.Transaction, error) {
	var result *models.Transaction
	var alerts []func()

	err := db.Transaction(func(tx *gorm.DB) error {
		v, err := ValidateCallback(tx, cb.Reference, provider.Name(), payload, cb.Nonce, ip, cb.EventType)
		if err != nil {
			return err
		}
		result = v.Transaction
		if v.Replayed {
			log.Printf("[%s] Duplicate callback for %s ignored\n", provider.Name(), cb.Reference)
			return nil
		}

		transaction := v.Transaction
		score, err := RiskScore(tx, transaction, ip)
		if err != nil {
			return err
		}

		switch RiskTier(score) {
		case types.RISK_HIGH:
			if err := RiskLog(tx, transaction.Reference, transaction.Provider, ip, "high_risk_callback", score, "callback blocked by risk engine"); err != nil {
				return err
			}
			if err := setTransactionStatus(tx, transaction, types.TRANSACTION_BLOCKED); err != nil {
				return err
			}
			reference := transaction.Reference
			alerts = append(alerts, func() {
				AlertCritical(fmt.Sprintf("Transaction %s blocked by risk engine (score %d)", reference, score))
			})
			return nil
		case types.RISK_MEDIUM:
			if err := RiskLog(tx, transaction.Reference, transaction.Provider, ip, "medium_risk_callback", score, "callback flagged by risk engine"); err != nil {
				return err
			}
			reference := transaction.Reference
			alerts = append(alerts, func() {
				AlertWarning(fmt.Sprintf("Transaction %s flagged by risk engine (score %d)", reference, score))
			})
		}

		switch cb.Status {
		case types.TRANSACTION_VALID:
			return finalizeAccepted(tx, transaction)
		case types.TRANSACTION_FAILED:
			return finalizeFailed(tx, transaction)
		case types.TRANSACTION_PENDING:
			// Provider still processing; the event is recorded, nothing
			// to finalize yet.
			return nil
		}
		return fmt.Errorf("%w: %s", providers.ErrUnknownStatus, cb.Status)
	})
	if err != nil {
		return nil, err
	}

	for _, fire := range alerts {
		fire()
	}

	return result, nil
}

func setTransactionStatus(tx *gorm.DB, transaction *models.Transaction, to types.TransactionStatus) error {
	if !transaction.Status.CanTransition(to) {
		return ErrAlreadyFinalized
	}
	if err := tx.
		Model(&models.Transaction{}).
		Where("id = ?", transaction.ID).
		Update("status", to).
		Error; err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	transaction.Status = to
	return nil
}

// finalizeAccepted moves the transaction, payment trace and conversion to
// their success states and posts the balanced ledger pair, all in the
// caller's unit of work.
func finalizeAccepted(tx *gorm.DB, transaction *models.Transaction) error {
	if err := setTransactionStatus(tx, transaction, types.TRANSACTION_VALID); err != nil {
		return err
	}

	payment, conversion, err := loadPaymentLeg(tx, transaction.Reference)
	if err != nil {
		return err
	}

	currency := "XOF"
	if payment != nil {
		currency = payment.SourceCurrency
		if err := tx.
			Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Update("status", types.PAYMENT_SUCCEEDED).
			Error; err != nil {
			return fmt.Errorf("failed to update payment trace: %w", err)
		}
	}
	if conversion != nil && conversion.Status.CanTransition(types.CONVERSION_PAID) {
		if err := tx.
			Model(&models.Conversion{}).
			Where("id = ?", conversion.ID).
			Update("status", types.CONVERSION_PAID).
			Error; err != nil {
			return fmt.Errorf("failed to update conversion status: %w", err)
		}
	}

	return LedgerRecordPair(tx, transaction, currency)
}

func finalizeFailed(tx *gorm.DB, transaction *models.Transaction) error {
	if err := setTransactionStatus(tx, transaction, types.TRANSACTION_FAILED); err != nil {
		return err
	}

	payment, conversion, err := loadPaymentLeg(tx, transaction.Reference)
	if err != nil {
		return err
	}

	if payment != nil {
		if err := tx.
			Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Update("status", types.PAYMENT_FAILED).
			Error; err != nil {
			return fmt.Errorf("failed to update payment trace: %w", err)
		}
	}
	if conversion != nil && conversion.Status.CanTransition(types.CONVERSION_FAILED) {
		if err := tx.
			Model(&models.Conversion{}).
			Where("id = ?", conversion.ID).
			Update("status", types.CONVERSION_FAILED).
			Error; err != nil {
			return fmt.Errorf("failed to update conversion status: %w", err)
		}
	}

	return nil
}

func loadPaymentLeg(tx *gorm.DB, transactionRef string) (*models.Payment, *models.Conversion, error) {
	var payment models.Payment
	err := tx.
		Where(&models.Payment{TransactionReference: transactionRef}).
		First(&payment).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Simulated or out-of-band transactions have no payment leg.
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load payment trace: %w", err)
	}

	var conversion models.Conversion
	err = tx.
		Clauses(clause.Locking{
			Strength: "UPDATE",
			Table:    clause.Table{Name: clause.CurrentTable},
		}).
		Where("id = ?", payment.ConversionID).
		First(&conversion).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &payment, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load conversion: %w", err)
	}
	return &payment, &conversion, nil
}
