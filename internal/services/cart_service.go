package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/example/vinora/internal/models"
	"github.com/example/vinora/internal/storage"
)

// ErrQuantityInvalid rejects non-positive quantities on add.
var ErrQuantityInvalid = errors.New("quantity must be positive")

// CartService manages per-user session carts.
type CartService struct {
	store storage.CartStore
}

// NewCartService constructs a CartService.
func NewCartService(store storage.CartStore) *CartService {
	return &CartService{store: store}
}

// AddItem puts a product into the cart. If the product is already
// present the quantities are merged; the snapshot fields (name, image,
// price) are refreshed from the incoming item.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, item models.CartItem) (models.CartItem, error) {
	if item.Quantity <= 0 {
		return models.CartItem{}, ErrQuantityInvalid
	}

	existing, found, err := s.store.GetItem(ctx, userID, item.ProductID)
	if err != nil {
		return models.CartItem{}, err
	}
	if found {
		item.Quantity += existing.Quantity
	}

	if err := s.store.SetItem(ctx, userID, item); err != nil {
		return models.CartItem{}, err
	}
	return item, nil
}

// SetQuantity overwrites the quantity of a cart line. Zero or negative
// removes the line.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return s.store.RemoveItem(ctx, userID, productID)
	}

	item, found, err := s.store.GetItem(ctx, userID, productID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	item.Quantity = quantity
	return s.store.SetItem(ctx, userID, *item)
}

// Items returns the cart contents.
func (s *CartService) Items(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return s.store.GetItems(ctx, userID)
}

// RemoveItem drops a single product from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return s.store.RemoveItem(ctx, userID, productID)
}

// Clear empties the cart, e.g. after checkout.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.store.Clear(ctx, userID)
}
