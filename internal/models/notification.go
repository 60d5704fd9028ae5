package models

import "time"

// NotificationTypeDealMatch marks notifications produced by keyword fan-out.
const NotificationTypeDealMatch = "deal_match"

// Notification is an in-app alert for one user about one deal.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	DealID    string    `json:"dealId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Recipient is a user whose keyword subscriptions match a deal.
type Recipient struct {
	UserID             string
	Email              string
	FirstName          string
	EmailNotifications bool
}

// DealMatchedEvent is published to the broker for every created notification.
type DealMatchedEvent struct {
	NotificationID string    `json:"notificationId"`
	UserID         string    `json:"userId"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	DealID         string    `json:"dealId"`
	DealTitle      string    `json:"dealTitle"`
	DealType       DealType  `json:"dealType"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// DealExpiringEvent is published by the scheduler for deals expiring within a day.
type DealExpiringEvent struct {
	DealID     string    `json:"dealId"`
	DealTitle  string    `json:"dealTitle"`
	SupplierID string    `json:"supplierId"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
