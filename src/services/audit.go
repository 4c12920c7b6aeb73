package services

import (
	"fmt"

	"github.com/AfricaChange/AfricaChange/src/models"
	"github.com/AfricaChange/AfricaChange/src/types"
	"gorm.io/gorm"
)

func logAdminAction(tx *gorm.DB, adminID uint, action, targetType, reference, reason, ip string) error {
	row := models.AdminAction{
		AdminID:         adminID,
		ActionType:      action,
		TargetType:      targetType,
		TargetReference: reference,
		Reason:          reason,
		IPAddress:       ip,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record admin action: %w", err)
	}
	return nil
}

func audit(tx *gorm.DB, event string, payload types.JSONB, ip string) error {
	row := models.AuditLog{
		ActorType: "admin",
		Event:     event,
		Payload:   payload,
		IPAddress: ip,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record audit log: %w", err)
	}
	return nil
}
