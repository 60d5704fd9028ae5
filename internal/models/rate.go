package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateEntry is one row of a supplier price list.
type RateEntry struct {
	ID         string          `json:"id"`
	SupplierID string          `json:"supplierId"`
	Item       string          `json:"item"`
	Unit       string          `json:"unit,omitempty"`
	Rate       decimal.Decimal `json:"rate"`
	Category   string          `json:"category,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// RateRow is one uploaded price list row.
type RateRow struct {
	Item     string          `json:"item" validate:"required,max=200"`
	Unit     string          `json:"unit" validate:"max=50"`
	Rate     decimal.Decimal `json:"rate"`
	Category string          `json:"category" validate:"max=100"`
}

// BulkRatesRequest is the body of the bulk upload endpoint.
type BulkRatesRequest struct {
	Rates []RateRow `json:"rates" validate:"required,min=1,max=1000,dive"`
}
