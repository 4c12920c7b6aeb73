package models

import (
	"github.com/AfricaChange/AfricaChange/src/types"
)

// Payment is the business-level trace of a conversion's payment leg,
// distinct from the authoritative Transaction record it points at.
type Payment struct {
	ID                   uint                `gorm:"primarykey" json:"id"`
	ConversionID         uint                `gorm:"uniqueIndex;not null" json:"conversion_id"`
	AmountSent           float64             `gorm:"not null" json:"amount_sent"`
	AmountReceived       float64             `gorm:"not null" json:"amount_received"`
	SourceCurrency       string              `gorm:"size:10;not null" json:"source_currency"`
	TargetCurrency       string              `gorm:"size:10;not null" json:"target_currency"`
	SenderPhone          string              `gorm:"size:20;not null" json:"sender_phone"`
	ReceiverPhone        string              `gorm:"size:20;not null" json:"receiver_phone"`
	Status               types.PaymentStatus `gorm:"size:20;default:en_attente" json:"status"`
	IdempotencyKey       string              `gorm:"size:64;uniqueIndex;not null" json:"idempotency_key"`
	TransactionReference string              `gorm:"size:100;index;not null" json:"transaction_reference"`

	Conversion *Conversion `gorm:"foreignKey:conversion_id" json:"conversion,omitempty"`

	types.Timestamps
}
