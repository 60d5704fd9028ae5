package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditTransactionType classifies a ledger row.
type CreditTransactionType string

const (
	CreditPurchase CreditTransactionType = "purchase"
	CreditCharge   CreditTransactionType = "charge"
	CreditRefund   CreditTransactionType = "refund"
)

// CreditTransaction is an append-only ledger row. Amount is negative for charges.
type CreditTransaction struct {
	ID          string                `json:"id"`
	UserID      string                `json:"userId"`
	Amount      decimal.Decimal       `json:"amount"`
	Type        CreditTransactionType `json:"type"`
	DealID      *string               `json:"dealId,omitempty"`
	PaymentID   *string               `json:"paymentId,omitempty"`
	Description string                `json:"description"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// RefundRequest is the body of the admin refund endpoint.
type RefundRequest struct {
	Credits decimal.Decimal `json:"credits"`
	DealID  *string         `json:"dealId" validate:"omitempty,uuid"`
	Reason  string          `json:"reason" validate:"required,max=500"`
}
