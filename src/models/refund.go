package models

import "time"

type Refund struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	TransactionID uint      `gorm:"index;not null" json:"transaction_id"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Reason        string    `gorm:"type:text" json:"reason,omitempty"`
	AdminID       uint      `gorm:"not null" json:"admin_id"`
	Status        string    `gorm:"size:20;default:completed" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	Transaction *Transaction `gorm:"foreignKey:transaction_id" json:"-"`
}
