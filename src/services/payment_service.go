package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/AfricaChange/AfricaChange/src/models"
	"github.com/AfricaChange/AfricaChange/src/providers"
	"github.com/AfricaChange/AfricaChange/src/types"
	"github.com/AfricaChange/AfricaChange/src/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockConversion acquires an exclusive row lock on the conversion and
// atomically moves it out of en_attente. It must run inside the caller's
// transaction: the lock and the status write commit as one unit, so two
// concurrent callers can never both observe en_attente. This is the single
// guard against double payment.
func LockConversion(tx *gorm.DB, reference string, userID *uint) (*models.Conversion, error) {
	var conversion models.Conversion
	if err := tx.
		Clauses(clause.Locking{
			Strength: "UPDATE",
			Table:    clause.Table{Name: clause.CurrentTable},
		}).
		Where(&models.Conversion{Reference: reference}).
		First(&conversion).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock conversion: %w", err)
	}

	if conversion.UserID != nil {
		if userID == nil || *conversion.UserID != *userID {
			return nil, ErrForbidden
		}
	}

	if conversion.Status != types.CONVERSION_PENDING {
		return nil, ErrAlreadyProcessed
	}

	if err := tx.
		Model(&models.Conversion{}).
		Where("id = ?", conversion.ID).
		Update("status", types.CONVERSION_IN_PROGRESS).
		Error; err != nil {
		return nil, fmt.Errorf("failed to update conversion status: %w", err)
	}
	conversion.Status = types.CONVERSION_IN_PROGRESS

	return &conversion, nil
}

// CreateTransaction creates the authoritative payment-attempt record in
// en_attente with a freshly generated unique reference.
func CreateTransaction(tx *gorm.DB, conversion *models.Conversion, provider string, amount float64, ip string) (*models.Transaction, error) {
	transaction := models.Transaction{
		UserID:    conversion.UserID,
		Type:      types.TRANSACTION_PAYMENT,
		Amount:    amount,
		Status:    types.TRANSACTION_PENDING,
		Provider:  provider,
		Reference: utils.GenerateTransactionReference(),
		IPAddress: ip,
	}
	if err := tx.Create(&transaction).Error; err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return &transaction, nil
}

// CreatePaymentTrace creates the payment trace with a fresh idempotency
// key. A key collision is vanishingly unlikely and treated as fatal rather
// than silently retried.
func CreatePaymentTrace(tx *gorm.DB, conversion *models.Conversion, transactionRef string, senderPhone string) (*models.Payment, error) {
	payment := models.Payment{
		ConversionID:         conversion.ID,
		AmountSent:           conversion.AmountInitial,
		AmountReceived:       conversion.AmountConverted,
		SourceCurrency:       conversion.FromCurrency,
		TargetCurrency:       conversion.ToCurrency,
		SenderPhone:          senderPhone,
		ReceiverPhone:        conversion.ReceiverPhone,
		Status:               types.PAYMENT_PENDING,
		IdempotencyKey:       utils.GenerateIdempotencyKey(),
		TransactionReference: transactionRef,
	}
	if err := tx.Create(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateIdempotencyKey
		}
		return nil, fmt.Errorf("failed to create payment trace: %w", err)
	}
	return &payment, nil
}

// Rollback moves a locked conversion from paiement_en_cours to echoue
// after a failed provider initiation. It never returns the conversion to
// en_attente: a silent retry would risk a duplicate provider call without
// operator visibility.
func Rollback(tx *gorm.DB, conversion *models.Conversion) error {
	if conversion.Status != types.CONVERSION_IN_PROGRESS {
		return nil
	}
	if err := tx.
		Model(&models.Conversion{}).
		Where("id = ?", conversion.ID).
		Update("status", types.CONVERSION_FAILED).
		Error; err != nil {
		return fmt.Errorf("failed to roll back conversion: %w", err)
	}
	conversion.Status = types.CONVERSION_FAILED
	return nil
}

// InitiatePayment runs the whole initiation unit: lock the conversion,
// create the transaction and payment trace, then call the provider while
// the row lock is still held. A provider failure finalizes the conversion
// as echoue inside the same unit instead of leaving it mid-flight.
func InitiatePayment(db *gorm.DB, rd *redis.Client, provider providers.Provider, reference string, phone string, userID *uint, ip string, returnURL string) (string, error) {
	var paymentURL string
	var provErr error

	err := db.Transaction(func(tx *gorm.DB) error {
		conversion, err := LockConversion(tx, reference, userID)
		if err != nil {
			return err
		}

		transaction, err := CreateTransaction(tx, conversion, provider.Name(), conversion.AmountInitial, ip)
		if err != nil {
			return err
		}

		payment, err := CreatePaymentTrace(tx, conversion, transaction.Reference, phone)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		result, err := provider.Initiate(ctx, providers.InitiateParams{
			Amount:    conversion.AmountInitial,
			Phone:     phone,
			Reference: transaction.Reference,
			ReturnURL: returnURL,
		})
		if err != nil {
			// Keep the unit committed with everything marked failed so
			// the outcome is visible, then surface ErrProvider.
			log.Printf("[%s] Payment initiation failed for %s: %s\n", provider.Name(), reference, err.Error())
			provErr = fmt.Errorf("%w: %s", ErrProvider, err.Error())
			if err := Rollback(tx, conversion); err != nil {
				return err
			}
			if err := tx.
				Model(&models.Transaction{}).
				Where("id = ?", transaction.ID).
				Update("status", types.TRANSACTION_FAILED).
				Error; err != nil {
				return err
			}
			if err := tx.
				Model(&models.Payment{}).
				Where("id = ?", payment.ID).
				Update("status", types.PAYMENT_FAILED).
				Error; err != nil {
				return err
			}
			return nil
		}

		paymentURL = result.PaymentURL
		return nil
	})
	if err != nil {
		return "", err
	}
	if provErr != nil {
		return "", provErr
	}

	if rd != nil {
		if _, err := rd.SetEx(context.Background(), fmt.Sprintf("payment_url:%s", reference), paymentURL, 10*time.Minute).Result(); err != nil {
			log.Printf("Error caching payment URL for [%s]: %s\n", reference, err.Error())
		}
	}

	return paymentURL, nil
}
