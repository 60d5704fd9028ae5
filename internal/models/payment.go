package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the state of a credit purchase.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentComplete  PaymentStatus = "complete"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is a credit purchase made through PayFast.
type Payment struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	Credits           decimal.Decimal `json:"credits"`
	Amount            decimal.Decimal `json:"amount"`
	Status            PaymentStatus   `json:"status"`
	ProviderPaymentID string          `json:"providerPaymentId,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// PurchaseRequest is the body of the credit purchase endpoint.
type PurchaseRequest struct {
	Credits int64 `json:"credits" validate:"required,gt=0"`
}

// Checkout is returned to the browser, which posts PaymentData to PaymentURL.
type Checkout struct {
	PaymentID   string            `json:"paymentId"`
	PaymentURL  string            `json:"paymentUrl"`
	PaymentData map[string]string `json:"paymentData"`
	// Fields keeps the order PayFast expects when the form is rebuilt.
	Fields []string `json:"fields"`
}
