package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DealRequestStatus is the state of a buyer request.
type DealRequestStatus string

const (
	DealRequestOpen   DealRequestStatus = "open"
	DealRequestClosed DealRequestStatus = "closed"
)

// DealRequest is a buyer-posted "looking for" listing.
type DealRequest struct {
	ID          string              `json:"id"`
	BuyerID     string              `json:"buyerId"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Budget      decimal.NullDecimal `json:"budget"`
	Quantity    int                 `json:"quantity,omitempty"`
	Status      DealRequestStatus   `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// DealRequestInput is the body of the deal request creation endpoint.
type DealRequestInput struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description" validate:"required"`
	Category    string           `json:"category" validate:"required,max=100"`
	Budget      *decimal.Decimal `json:"budget"`
	Quantity    int              `json:"quantity" validate:"gte=0"`
}
