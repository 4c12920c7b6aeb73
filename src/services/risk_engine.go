package services

import (
	"fmt"
	"time"

	"github.com/AfricaChange/AfricaChange/src/config"
	"github.com/AfricaChange/AfricaChange/src/models"
	"github.com/AfricaChange/AfricaChange/src/types"
	"gorm.io/gorm"
)

// RiskScore is a deterministic heuristic over the transaction and its
// origin IP. It reads recorded history but never writes.
//
//	+40 repeated rapid payments from the same IP (>= 3 in 5 minutes)
//	+30 high amount
//	+20 anonymous transaction (no owning user)
func RiskScore(tx *gorm.DB, transaction *models.Transaction, ip string) (int, error) {
	score := 0

	var recent int64
	if err := tx.
		Model(&models.Transaction{}).
		Where("ip_address = ?", ip).
		Where("created_at >= ?", time.Now().UTC().Add(-5*time.Minute)).
		Count(&recent).
		Error; err != nil {
		return 0, fmt.Errorf("failed to count recent transactions: %w", err)
	}
	if recent >= 3 {
		score += 40
	}

	if transaction.Amount > config.HighAmountThreshold() {
		score += 30
	}

	if transaction.UserID == nil {
		score += 20
	}

	return score, nil
}

func RiskTier(score int) types.RiskTier {
	switch {
	case score >= config.HighRiskThreshold():
		return types.RISK_HIGH
	case score >= config.MediumRiskThreshold():
		return types.RISK_MEDIUM
	}
	return types.RISK_NONE
}

// RiskLog persists one scored observation. Mandatory whenever a non-zero
// tier is reached, whether or not the transaction is ultimately accepted.
func RiskLog(tx *gorm.DB, reference, provider, ip, riskType string, score int, details string) error {
	event := models.RiskEvent{
		Reference: reference,
		Provider:  provider,
		IPAddress: ip,
		RiskType:  riskType,
		RiskScore: score,
		Details:   details,
	}
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("failed to record risk event: %w", err)
	}
	return nil
}
