// Package models contains the domain types shared by the storage layer,
// the services and the HTTP handlers.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the account kind.
type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleSupplier Role = "supplier"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a role a user may register with.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSupplier
}

// User is a registered marketplace account. Users are never hard-deleted.
type User struct {
	ID                 string          `json:"id"`
	Email              string          `json:"email"`
	PasswordHash       string          `json:"-"`
	Role               Role            `json:"role"`
	FirstName          string          `json:"firstName"`
	LastName           string          `json:"lastName"`
	CompanyName        string          `json:"companyName,omitempty"`
	VATNumber          string          `json:"vatNumber,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	IsVerified         bool            `json:"isVerified"`
	CreditBalance      decimal.Decimal `json:"creditBalance"`
	EmailNotifications bool            `json:"emailNotifications"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// RegisterRequest is the body of the registration endpoint.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Role        Role   `json:"role" validate:"required,oneof=buyer supplier"`
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	CompanyName string `json:"companyName"`
	VATNumber   string `json:"vatNumber" validate:"omitempty,numeric,len=10"`
	Phone       string `json:"phone"`
}

// LoginRequest is the body of the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfilePatch carries the user-editable profile fields. Nil fields are left unchanged.
type ProfilePatch struct {
	FirstName          *string `json:"firstName" validate:"omitempty,min=1"`
	LastName           *string `json:"lastName" validate:"omitempty,min=1"`
	CompanyName        *string `json:"companyName"`
	VATNumber          *string `json:"vatNumber" validate:"omitempty,numeric,len=10"`
	Phone              *string `json:"phone"`
	EmailNotifications *bool   `json:"emailNotifications"`
}
