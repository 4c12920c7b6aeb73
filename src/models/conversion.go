package models

import (
	"github.com/AfricaChange/AfricaChange/src/types"
)

type Conversion struct {
	ID              uint                   `gorm:"primarykey" json:"id"`
	UserID          *uint                  `json:"user_id,omitempty"`
	FromCurrency    string                 `gorm:"size:10" json:"from_currency"`
	ToCurrency      string                 `gorm:"size:10" json:"to_currency"`
	AmountInitial   float64                `gorm:"not null" json:"amount_initial"`
	AmountConverted float64                `gorm:"not null" json:"amount_converted"`
	SenderPhone     string                 `gorm:"size:20" json:"sender_phone"`
	ReceiverPhone   string                 `gorm:"size:20" json:"receiver_phone"`
	Reference       string                 `gorm:"size:50;uniqueIndex;not null" json:"reference"`
	Status          types.ConversionStatus `gorm:"size:20;default:en_attente" json:"status"`
	SystemAccountID *uint                  `json:"system_account_id,omitempty"`

	User          *User          `gorm:"foreignKey:user_id" json:"user,omitempty"`
	SystemAccount *SystemAccount `gorm:"foreignKey:system_account_id" json:"system_account,omitempty"`

	types.Timestamps
}
