package services

import (
	"log"
	"time"

	"github.com/AfricaChange/AfricaChange/src/config"
	"github.com/AfricaChange/AfricaChange/src/models"
	"github.com/AfricaChange/AfricaChange/src/types"
	"gorm.io/gorm"
)

// ExpireStalePayments closes anything stuck past the callback freshness
// window: conversions left in paiement_en_cours and transactions left in
// en_attente. Without it a lost provider callback would pin a conversion
// mid-flight forever.
func ExpireStalePayments(db *gorm.DB) {
	cutoff := time.Now().UTC().Add(-config.CallbackWindow())

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Conversion{}).
			Where("status = ?", types.CONVERSION_IN_PROGRESS).
			Where("updated_at < ?", cutoff).
			Update("status", types.CONVERSION_FAILED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Printf("[reaper] Expired %d stale conversions\n", res.RowsAffected)
		}

		res = tx.
			Model(&models.Transaction{}).
			Where("status = ?", types.TRANSACTION_PENDING).
			Where("created_at < ?", cutoff).
			Update("status", types.TRANSACTION_FAILED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Printf("[reaper] Expired %d stale transactions\n", res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		log.Printf("[reaper] Error expiring stale payments: %s\n", err.Error())
	}
}
