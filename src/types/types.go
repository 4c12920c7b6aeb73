package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// ConversionStatus is the closed state machine for a conversion:
// en_attente -> paiement_en_cours -> {paye | echoue}.
type ConversionStatus string

const (
	CONVERSION_PENDING     ConversionStatus = "en_attente"
	CONVERSION_IN_PROGRESS ConversionStatus = "paiement_en_cours"
	CONVERSION_PAID        ConversionStatus = "paye"
	CONVERSION_FAILED      ConversionStatus = "echoue"
)

func (s ConversionStatus) Terminal() bool {
	return s == CONVERSION_PAID || s == CONVERSION_FAILED
}

func (s ConversionStatus) CanTransition(to ConversionStatus) bool {
	switch s {
	case CONVERSION_PENDING:
		return to == CONVERSION_IN_PROGRESS
	case CONVERSION_IN_PROGRESS:
		return to == CONVERSION_PAID || to == CONVERSION_FAILED
	default:
		return false
	}
}

// TransactionStatus is the closed state machine for a payment attempt:
// en_attente -> {valide | echoue | bloque}, valide -> rembourse.
// bloque and rembourse are reachable only through the admin engine.
type TransactionStatus string

const (
	TRANSACTION_PENDING  TransactionStatus = "en_attente"
	TRANSACTION_VALID    TransactionStatus = "valide"
	TRANSACTION_FAILED   TransactionStatus = "echoue"
	TRANSACTION_BLOCKED  TransactionStatus = "bloque"
	TRANSACTION_REFUNDED TransactionStatus = "rembourse"
)

func (s TransactionStatus) Terminal() bool {
	switch s {
	case TRANSACTION_VALID, TRANSACTION_FAILED, TRANSACTION_BLOCKED, TRANSACTION_REFUNDED:
		return true
	}
	return false
}

func (s TransactionStatus) CanTransition(to TransactionStatus) bool {
	switch s {
	case TRANSACTION_PENDING:
		return to == TRANSACTION_VALID || to == TRANSACTION_FAILED || to == TRANSACTION_BLOCKED
	case TRANSACTION_VALID:
		return to == TRANSACTION_REFUNDED
	default:
		return false
	}
}

type PaymentStatus string

const (
	PAYMENT_PENDING   PaymentStatus = "en_attente"
	PAYMENT_SUCCEEDED PaymentStatus = "succes"
	PAYMENT_FAILED    PaymentStatus = "echec"
)

type TransactionType string

const (
	TRANSACTION_DEPOSIT    TransactionType = "depot"
	TRANSACTION_WITHDRAWAL TransactionType = "retrait"
	TRANSACTION_PAYMENT    TransactionType = "paiement"
)

type LedgerDirection string

const (
	LEDGER_DEBIT  LedgerDirection = "debit"
	LEDGER_CREDIT LedgerDirection = "credit"
)

type RiskTier string

const (
	RISK_NONE   RiskTier = "none"
	RISK_MEDIUM RiskTier = "medium"
	RISK_HIGH   RiskTier = "high"
)

type Environment string

const (
	Local      Environment = "local"
	Test       Environment = "test"
	Production Environment = "production"
)

type Claims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

type CreateConversionRequestBody struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	FromCurrency  string  `json:"from_currency" binding:"required"`
	ToCurrency    string  `json:"to_currency" binding:"required"`
	SenderPhone   string  `json:"sender_phone" binding:"required,phone"`
	ReceiverPhone string  `json:"receiver_phone" binding:"required,phone"`
}

type QuoteRequestBody struct {
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	FromCurrency string  `json:"from_currency" binding:"required"`
	ToCurrency   string  `json:"to_currency" binding:"required"`
}

type InitiatePaymentRequestBody struct {
	Reference string `json:"reference" binding:"required"`
	Phone     string `json:"phone" binding:"required,phone"`
}

type AdminActionRequestBody struct {
	Reason string `json:"reason"`
}

type AdminRefundRequestBody struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Reason string  `json:"reason" binding:"required"`
}

type ReferenceURIParams struct {
	Reference string `uri:"reference" binding:"required"`
}
