package models

import "time"

// AdminAction is the append-only record of one privileged operation.
// Every admin engine call writes exactly one row here and one AuditLog row.
type AdminAction struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	AdminID         uint      `gorm:"not null" json:"admin_id"`
	ActionType      string    `gorm:"size:50;not null" json:"action_type"`
	TargetType      string    `gorm:"size:50;not null" json:"target_type"`
	TargetReference string    `gorm:"size:100;index;not null" json:"target_reference"`
	Reason          string    `gorm:"type:text" json:"reason,omitempty"`
	IPAddress       string    `gorm:"size:45" json:"ip_address,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}
