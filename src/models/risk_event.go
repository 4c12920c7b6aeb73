package models

import "time"

type RiskEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Reference string    `gorm:"size:100;index;not null" json:"reference"`
	Provider  string    `gorm:"size:50" json:"provider,omitempty"`
	IPAddress string    `gorm:"size:45" json:"ip_address,omitempty"`
	RiskType  string    `gorm:"size:50;not null" json:"risk_type"`
	RiskScore int       `gorm:"not null" json:"risk_score"`
	Details   string    `gorm:"type:text" json:"details,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
