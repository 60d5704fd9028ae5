package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DealType is the placement tier of a deal.
type DealType string

const (
	DealTypeHot     DealType = "hot"
	DealTypeRegular DealType = "regular"
)

// DealStatus is the lifecycle state of a deal.
type DealStatus string

const (
	DealStatusActive  DealStatus = "active"
	DealStatusExpired DealStatus = "expired"
	DealStatusPaused  DealStatus = "paused"
)

// Deal is a supplier-posted, time-boxed listing.
type Deal struct {
	ID            string              `json:"id"`
	SupplierID    string              `json:"supplierId"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Category      string              `json:"category"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
	DealType      DealType            `json:"dealType"`
	Status        DealStatus          `json:"status"`
	ExpiresAt     time.Time           `json:"expiresAt"`
	ViewCount     int                 `json:"viewCount"`
	InquiryCount  int                 `json:"inquiryCount"`
	Keywords      []string            `json:"keywords"`
	CreditsCost   decimal.Decimal     `json:"creditsCost"`
	ImageURL      string              `json:"imageUrl,omitempty"`
	MinOrder      int                 `json:"minOrder,omitempty"`
	Location      string              `json:"location,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// IsLive reports whether the deal can be interacted with at the given instant.
func (d *Deal) IsLive(now time.Time) bool {
	return d.Status == DealStatusActive && now.Before(d.ExpiresAt)
}

// DealStats are the fields of a deal that change without the owner editing it.
type DealStats struct {
	Status       DealStatus
	ExpiresAt    time.Time
	ViewCount    int
	InquiryCount int
	UpdatedAt    time.Time
}

// ApplyStats overwrites the volatile fields of d.
func (d *Deal) ApplyStats(st DealStats) {
	d.Status = st.Status
	d.ExpiresAt = st.ExpiresAt
	d.ViewCount = st.ViewCount
	d.InquiryCount = st.InquiryCount
	d.UpdatedAt = st.UpdatedAt
}

// CreateDealRequest is the body of the deal creation endpoint.
type CreateDealRequest struct {
	Title         string           `json:"title" validate:"required,max=200"`
	Description   string           `json:"description" validate:"required"`
	Category      string           `json:"category" validate:"required,max=100"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	DealType      DealType         `json:"dealType" validate:"required,oneof=hot regular"`
	Keywords      []string         `json:"keywords" validate:"max=20,dive,min=2,max=64"`
	ImageURL      string           `json:"imageUrl" validate:"omitempty,url"`
	MinOrder      int              `json:"minOrder" validate:"gte=0"`
	Location      string           `json:"location"`
	ExpiresAt     *time.Time       `json:"expiresAt"`
}

// DealPatch is a partial update of a deal. Nil fields are left unchanged.
type DealPatch struct {
	Title         *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description" validate:"omitempty,min=1"`
	Category      *string          `json:"category" validate:"omitempty,min=1,max=100"`
	Price         *decimal.Decimal `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	ImageURL      *string          `json:"imageUrl" validate:"omitempty,url"`
	MinOrder      *int             `json:"minOrder" validate:"omitempty,gte=0"`
	Location      *string          `json:"location"`
	Keywords      []string         `json:"keywords" validate:"omitempty,max=20,dive,min=2,max=64"`
}

// StatusRequest is the body of the deal status endpoint.
type StatusRequest struct {
	Status DealStatus `json:"status" validate:"required,oneof=active paused"`
}

// DealFilter narrows a deal listing.
type DealFilter struct {
	Type       DealType
	Search     string
	Category   string
	SupplierID string
	Limit      int
	Offset     int
}
