package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the closed set of states an order may occupy.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusApproved  OrderStatus = "APPROVED"
	OrderStatusShipping  OrderStatus = "SHIPPING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// AllOrderStatuses lists every member of the closed status set.
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusShipping,
	OrderStatusCompleted,
	OrderStatusCanceled,
}

// IsValidOrderStatus reports membership in the closed status set.
// Comparison is case-sensitive: "pending" is not a valid status.
func IsValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusApproved, OrderStatusShipping,
		OrderStatusCompleted, OrderStatusCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCanceled
}

// Editable reports whether the admin UI may offer a status change.
func (s OrderStatus) Editable() bool {
	return !s.IsTerminal()
}

// Order is created in PENDING at checkout and mutated only through the
// status engine. Orders are never deleted; cancellation is a transition.
type Order struct {
	BaseModel
	UserID        uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	User          *User         `json:"user,omitempty"`
	AddressID     *uuid.UUID    `gorm:"type:uuid" json:"address_id"`
	OrderNumber   string        `gorm:"uniqueIndex" json:"order_number"`
	Status        OrderStatus   `gorm:"type:varchar(20);index" json:"status"`
	Store         string        `json:"store"`
	PlacedAt      time.Time     `json:"order_date"`
	Subtotal      int64         `json:"subtotal"`
	Discount      float64       `json:"discount"`
	ShippingFee   int64         `json:"shipping_fee"`
	TotalPrice    int64         `json:"total_price"`
	TotalItem     int           `json:"total_item"`
	PaymentMethod string        `json:"payment_method"`
	Details       []OrderDetail `json:"details,omitempty"`
}

// OrderDetail is a line item, created atomically with its parent order
// at checkout and immutable afterward. Price is the unit price at the
// time of order; ProductName/ProductImage are denormalized snapshots.
type OrderDetail struct {
	BaseModel
	OrderID      uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID    *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductName  string     `json:"product_name"`
	ProductImage string     `json:"product_image"`
	Quantity     int        `json:"quantity"`
	Price        int64      `json:"price"`
	TotalPrice   int64      `json:"total_price"`
}

// Notification is an in-app message for a user, e.g. created when an
// order of theirs is canceled.
type Notification struct {
	BaseModel
	UserID  uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	OrderID *uuid.UUID `gorm:"type:uuid" json:"order_id"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	IsRead  bool       `json:"is_read"`
}
