package models

import "time"

// Coupon is a one-time redeemable code for a buyer, deal and supplier triple.
type Coupon struct {
	ID                 string     `json:"id"`
	Code               string     `json:"code"`
	DealID             string     `json:"dealId"`
	BuyerID            string     `json:"buyerId"`
	SupplierID         string     `json:"supplierId"`
	IsRedeemed         bool       `json:"isRedeemed"`
	RedeemedAt         *time.Time `json:"redeemedAt,omitempty"`
	RedemptionLocation string     `json:"redemptionLocation,omitempty"`
	RedemptionNotes    string     `json:"redemptionNotes,omitempty"`
	ExpiresAt          time.Time  `json:"expiresAt"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// IsExpired reports whether the coupon expiry has passed at now.
func (c *Coupon) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// CouponRequest is the body of the coupon creation endpoint.
type CouponRequest struct {
	DealID string `json:"dealId" validate:"required,uuid"`
}

// RedeemRequest is the body of the redemption endpoint.
type RedeemRequest struct {
	Location string `json:"location" validate:"max=200"`
	Notes    string `json:"notes" validate:"max=1000"`
}

// CouponDealSnapshot is the part of a deal shown on the verification screen.
type CouponDealSnapshot struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	DealType    DealType `json:"dealType"`
}

// CouponBuyerSnapshot is the part of a buyer shown on the verification screen.
type CouponBuyerSnapshot struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	CompanyName string `json:"companyName,omitempty"`
}

// CouponValidation is the result of looking a coupon code up.
type CouponValidation struct {
	Valid     bool                 `json:"valid"`
	CanRedeem bool                 `json:"canRedeem"`
	Message   string               `json:"message"`
	Coupon    *Coupon              `json:"coupon,omitempty"`
	Deal      *CouponDealSnapshot  `json:"deal,omitempty"`
	Buyer     *CouponBuyerSnapshot `json:"buyer,omitempty"`
}

// RedemptionAttempt is an append-only audit row of a redemption attempt.
type RedemptionAttempt struct {
	ID         string    `json:"id"`
	CouponID   string    `json:"couponId"`
	SupplierID string    `json:"supplierId"`
	Success    bool      `json:"success"`
	Reason     string    `json:"reason,omitempty"`
	Location   string    `json:"location,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
