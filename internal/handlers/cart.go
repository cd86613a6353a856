package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/vinora/internal/middleware"
	"github.com/example/vinora/internal/models"
	"github.com/example/vinora/internal/services"
	"github.com/example/vinora/internal/utils"
)

// CartHandler manages the session cart.
type CartHandler struct {
	db   *gorm.DB
	cart *services.CartService
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB, cart *services.CartService) *CartHandler {
	return &CartHandler{db: db, cart: cart}
}

// GetCart returns the cart contents with a running subtotal.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	items, err := h.cart.Items(c.UserContext(), userID)
	if err != nil {
		return err
	}

	var subtotal int64
	totalItem := 0
	for _, item := range items {
		subtotal += item.LineTotal()
		totalItem += item.Quantity
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"items":      items,
			"subtotal":   subtotal,
			"total_item": totalItem,
		},
	})
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// AddItem puts a product into the cart, merging quantities when the
// product is already there. The price snapshot always comes from the
// product record, never the client.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ? AND is_active = true", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	item, err := h.cart.AddItem(c.UserContext(), userID, models.CartItem{
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductImage: product.Image,
		Price:        product.Price,
		Quantity:     req.Quantity,
	})
	if err != nil {
		if errors.Is(err, services.ErrQuantityInvalid) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// UpdateItem sets the quantity of a cart line; zero removes it.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	var req updateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	if err := h.cart.SetQuantity(c.UserContext(), userID, productID, req.Quantity); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "cart updated"})
}

// RemoveItem drops a product from the cart.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	if err := h.cart.RemoveItem(c.UserContext(), userID, productID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ClearCart empties the cart.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.cart.Clear(c.UserContext(), userID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
