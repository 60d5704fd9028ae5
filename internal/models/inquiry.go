package models

import "time"

// InquiryStatus is the lifecycle state of an inquiry.
type InquiryStatus string

const (
	InquiryPending   InquiryStatus = "pending"
	InquiryResponded InquiryStatus = "responded"
	InquiryClosed    InquiryStatus = "closed"
)

// Inquiry is a buyer-to-supplier message about a deal.
type Inquiry struct {
	ID         string        `json:"id"`
	DealID     string        `json:"dealId"`
	BuyerID    string        `json:"buyerId"`
	SupplierID string        `json:"supplierId"`
	Message    string        `json:"message"`
	Quantity   int           `json:"quantity,omitempty"`
	Response   string        `json:"response,omitempty"`
	Status     InquiryStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// InquiryRequest is the body of the inquiry creation endpoint.
type InquiryRequest struct {
	DealID   string `json:"dealId" validate:"required,uuid"`
	Message  string `json:"message" validate:"required,max=2000"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// InquiryResponseRequest is the body of the respond endpoint.
type InquiryResponseRequest struct {
	Response string `json:"response" validate:"required,max=2000"`
}
