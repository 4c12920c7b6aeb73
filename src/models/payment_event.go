package models

import (
	"time"

	"github.com/AfricaChange/AfricaChange/src/types"
)

// PaymentEvent stores every inbound provider callback with deduplication
// metadata. The unique composite on (reference, provider, event_type) and
// the unique nonce are the at-most-once gates for callback processing.
type PaymentEvent struct {
	ID                   uint        `gorm:"primarykey" json:"id"`
	TransactionReference string      `gorm:"size:100;not null;index:ux_payment_events_ref_provider_event,unique,priority:1" json:"transaction_reference"`
	Provider             string      `gorm:"size:50;not null;index:ux_payment_events_ref_provider_event,unique,priority:2" json:"provider"`
	EventType            string      `gorm:"size:50;not null;index:ux_payment_events_ref_provider_event,unique,priority:3" json:"event_type"`
	Nonce                *string     `gorm:"size:128;uniqueIndex" json:"nonce,omitempty"`
	Payload              types.JSONB `gorm:"type:jsonb" json:"payload,omitempty"`
	IPAddress            string      `gorm:"size:45" json:"ip_address,omitempty"`
	CreatedAt            time.Time   `gorm:"autoCreateTime" json:"created_at"`
}
