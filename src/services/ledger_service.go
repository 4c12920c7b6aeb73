package services

import (
	"fmt"
	"strings"

	"github.com/AfricaChange/AfricaChange/src/models"
	"github.com/AfricaChange/AfricaChange/src/types"
	"gorm.io/gorm"
)

// LedgerRecord appends one immutable posting. There is no update or
// delete path: corrections are new postings.
func LedgerRecord(tx *gorm.DB, entry *models.LedgerEntry) error {
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}
	return nil
}

// LedgerRecordPair posts the balanced debit/credit pair for an accepted
// payment: user_wallet debited, the provider settlement account credited,
// same reference, amount and currency. Both postings belong to the
// caller's unit of work so the ledger can never half-commit.
func LedgerRecordPair(tx *gorm.DB, transaction *models.Transaction, currency string) error {
	provider := transaction.Provider
	systemAccount := fmt.Sprintf("system_%s", strings.ReplaceAll(strings.ToLower(provider), " ", "_"))

	debit := models.LedgerEntry{
		Reference:     transaction.Reference,
		Account:       "user_wallet",
		Direction:     types.LEDGER_DEBIT,
		Amount:        transaction.Amount,
		Currency:      currency,
		Provider:      provider,
		TransactionID: &transaction.ID,
		Description:   "Paiement utilisateur",
	}
	if err := LedgerRecord(tx, &debit); err != nil {
		return err
	}

	credit := models.LedgerEntry{
		Reference:     transaction.Reference,
		Account:       systemAccount,
		Direction:     types.LEDGER_CREDIT,
		Amount:        transaction.Amount,
		Currency:      currency,
		Provider:      provider,
		TransactionID: &transaction.ID,
		Description:   "Encaissement système",
	}
	return LedgerRecord(tx, &credit)
}
