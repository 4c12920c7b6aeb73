package models

import (
	"time"

	"github.com/AfricaChange/AfricaChange/src/types"
)

// LedgerEntry is one immutable accounting posting. Entries are written in
// balanced debit/credit pairs per reference and never updated or deleted.
type LedgerEntry struct {
	ID            uint                  `gorm:"primarykey" json:"id"`
	Reference     string                `gorm:"size:100;index;not null" json:"reference"`
	Account       string                `gorm:"size:100;not null" json:"account"`
	Direction     types.LedgerDirection `gorm:"size:10;not null" json:"direction"`
	Amount        float64               `gorm:"not null" json:"amount"`
	Currency      string                `gorm:"size:10;not null" json:"currency"`
	Provider      string                `gorm:"size:50" json:"provider,omitempty"`
	Description   string                `gorm:"size:255" json:"description,omitempty"`
	TransactionID *uint                 `json:"transaction_id,omitempty"`
	ConversionID  *uint                 `json:"conversion_id,omitempty"`
	PaymentID     *uint                 `json:"payment_id,omitempty"`
	CreatedAt     time.Time             `gorm:"autoCreateTime" json:"created_at"`
}
