package models

import (
	"github.com/AfricaChange/AfricaChange/src/types"
)

type Transaction struct {
	ID        uint                    `gorm:"primarykey" json:"id"`
	UserID    *uint                   `json:"user_id,omitempty"`
	Type      types.TransactionType   `gorm:"size:20;not null" json:"type"`
	Amount    float64                 `gorm:"not null" json:"amount"`
	Status    types.TransactionStatus `gorm:"size:20;default:en_attente" json:"status"`
	Reference string                  `gorm:"size:100;uniqueIndex;not null" json:"reference"`
	Provider  string                  `gorm:"size:50;not null" json:"provider"`
	IPAddress string                  `gorm:"size:45" json:"ip_address,omitempty"`

	User *User `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}
