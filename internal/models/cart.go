package models

import "github.com/google/uuid"

// CartItem is one line of a session cart. Carts live in redis, keyed by
// user, and are drained into an Order at checkout.
type CartItem struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductImage string    `json:"product_image"`
	Price        int64     `json:"price"`
	Quantity     int       `json:"quantity"`
}

// LineTotal is price times quantity.
func (i CartItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}
