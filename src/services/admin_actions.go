package services

import (
	"github.com/AfricaChange/AfricaChange/src/models"
	"github.com/AfricaChange/AfricaChange/src/types"
	"gorm.io/gorm"
)

// Admin actions are atomic, audited and irreversible: each call writes
// exactly one AdminAction row and one AuditLog row, and no transition
// exists that undoes bloque, rembourse or a recorded Refund. All three
// run inside the caller's transaction with the target row locked.

func requireAdmin(adminID uint) error {
	if adminID == 0 {
		return ErrAdminRequired
	}
	return nil
}

// AdminValidate manually forces a transaction to valide and posts the
// corresponding manual-credit ledger entry.
func AdminValidate(tx *gorm.DB, transaction *models.Transaction, adminID uint, ip, reason string) error {
	if err := requireAdmin(adminID); err != nil {
		return err
	}
	// bloque and rembourse are irreversible; manual validation must
	// never undo them.
	if transaction.Status == types.TRANSACTION_BLOCKED || transaction.Status == types.TRANSACTION_REFUNDED {
		return ErrAlreadyProcessed
	}
	if transaction.Status == types.TRANSACTION_VALID {
		return ErrAlreadyValidated
	}

	if err := tx.
		Model(&models.Transaction{}).
		Where("id = ?", transaction.ID).
		Update("status", types.TRANSACTION_VALID).
		Error; err != nil {
		return err
	}
	transaction.Status = types.TRANSACTION_VALID

	if err := LedgerRecord(tx, &models.LedgerEntry{
		Reference:     transaction.Reference,
		Account:       "system_manual",
		Direction:     types.LEDGER_CREDIT,
		Amount:        transaction.Amount,
		Currency:      "XOF",
		Provider:      "admin",
		TransactionID: &transaction.ID,
		Description:   "Validation manuelle admin",
	}); err != nil {
		return err
	}

	if err := logAdminAction(tx, adminID, "validate", "transaction", transaction.Reference, reason, ip); err != nil {
		return err
	}
	return audit(tx, "transaction_validated", types.JSONB{"reference": transaction.Reference}, ip)
}

// AdminBlock freezes a transaction and records a maximal-score risk
// event. The reason is mandatory.
func AdminBlock(tx *gorm.DB, transaction *models.Transaction, adminID uint, ip, reason string) error {
	if err := requireAdmin(adminID); err != nil {
		return err
	}
	if reason == "" {
		return ErrReasonRequired
	}
	if transaction.Status == types.TRANSACTION_BLOCKED || transaction.Status == types.TRANSACTION_REFUNDED {
		return ErrAlreadyProcessed
	}

	if err := tx.
		Model(&models.Transaction{}).
		Where("id = ?", transaction.ID).
		Update("status", types.TRANSACTION_BLOCKED).
		Error; err != nil {
		return err
	}
	transaction.Status = types.TRANSACTION_BLOCKED

	if err := RiskLog(tx, transaction.Reference, transaction.Provider, ip, "admin_block", 100, reason); err != nil {
		return err
	}

	if err := logAdminAction(tx, adminID, "block", "transaction", transaction.Reference, reason, ip); err != nil {
		return err
	}
	return audit(tx, "transaction_blocked", types.JSONB{"reference": transaction.Reference}, ip)
}

// AdminRefund reverses a validated transaction: a Refund row, a debit
// posting against system_refund, and the rembourse terminal state.
func AdminRefund(tx *gorm.DB, transaction *models.Transaction, adminID uint, ip string, amount float64, reason string) error {
	if err := requireAdmin(adminID); err != nil {
		return err
	}
	if transaction.Status != types.TRANSACTION_VALID {
		return ErrNotRefundable
	}

	refund := models.Refund{
		TransactionID: transaction.ID,
		Amount:        amount,
		Reason:        reason,
		AdminID:       adminID,
		Status:        "completed",
	}
	if err := tx.Create(&refund).Error; err != nil {
		return err
	}

	if err := LedgerRecord(tx, &models.LedgerEntry{
		Reference:     "REFUND-" + transaction.Reference,
		Account:       "system_refund",
		Direction:     types.LEDGER_DEBIT,
		Amount:        amount,
		Currency:      "XOF",
		Provider:      "admin",
		TransactionID: &transaction.ID,
		Description:   "Remboursement admin",
	}); err != nil {
		return err
	}

	if err := tx.
		Model(&models.Transaction{}).
		Where("id = ?", transaction.ID).
		Update("status", types.TRANSACTION_REFUNDED).
		Error; err != nil {
		return err
	}
	transaction.Status = types.TRANSACTION_REFUNDED

	if err := logAdminAction(tx, adminID, "refund", "transaction", transaction.Reference, reason, ip); err != nil {
		return err
	}
	return audit(tx, "refund_processed", types.JSONB{"reference": transaction.Reference, "amount": amount}, ip)
}
