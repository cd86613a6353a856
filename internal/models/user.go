package models

import "github.com/google/uuid"

// User roles.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a customer or back-office account.
type User struct {
	BaseModel
	FirstName        string        `json:"first_name"`
	LastName         string        `json:"last_name"`
	Email            string        `gorm:"uniqueIndex" json:"email"`
	Phone            string        `json:"phone"`
	DisplayName      string        `json:"display_name"`
	PasswordHash     string        `json:"-"`
	Role             string        `gorm:"default:customer" json:"role"`
	IsActive         bool          `gorm:"default:true" json:"is_active"`
	TwoFactorEnabled bool          `json:"two_factor_enabled"`
	Addresses        []UserAddress `json:"addresses,omitempty"`
	Orders           []Order       `json:"orders,omitempty"`
}

// UserAddress is a saved shipping address.
type UserAddress struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Label        string    `json:"label"`
	AddressLine  string    `json:"address_line"`
	Ward         string    `json:"ward"`
	District     string    `json:"district"`
	City         string    `json:"city"`
	ContactPhone string    `json:"contact_phone"`
	IsDefault    bool      `json:"is_default"`
}
