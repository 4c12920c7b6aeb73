package models

import (
	"time"

	"github.com/AfricaChange/AfricaChange/src/types"
)

type AuditLog struct {
	ID        uint        `gorm:"primarykey" json:"id"`
	ActorType string      `gorm:"size:20;not null" json:"actor_type"`
	Event     string      `gorm:"size:100;not null" json:"event"`
	Payload   types.JSONB `gorm:"type:jsonb" json:"payload,omitempty"`
	IPAddress string      `gorm:"size:45" json:"ip_address,omitempty"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
}
