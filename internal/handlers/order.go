package handlers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/vinora/internal/config"
	"github.com/example/vinora/internal/middleware"
	"github.com/example/vinora/internal/models"
	"github.com/example/vinora/internal/services"
	"github.com/example/vinora/internal/utils"
)

// OrderHandler manages customer order endpoints.
type OrderHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	cart   *services.CartService
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, cfg *config.Config, cart *services.CartService, orders *services.OrderService) *OrderHandler {
	return &OrderHandler{db: db, cfg: cfg, cart: cart, orders: orders}
}

type checkoutRequest struct {
	AddressID       string  `json:"address_id"`
	PaymentMethod   string  `json:"payment_method" validate:"required"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
}

// Checkout drains the session cart into a new PENDING order with its
// line items, in one transaction. Totals are computed server-side.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	items, err := h.cart.Items(c.UserContext(), userID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
	}

	order := models.Order{
		UserID:        userID,
		OrderNumber:   generateOrderNumber(),
		Status:        models.OrderStatusPending,
		Store:         h.cfg.StoreName,
		PlacedAt:      time.Now(),
		Discount:      req.DiscountPercent,
		PaymentMethod: req.PaymentMethod,
	}

	if req.AddressID != "" {
		if addrID, err := uuid.Parse(req.AddressID); err == nil {
			var address models.UserAddress
			if err := h.db.First(&address, "id = ? AND user_id = ?", addrID, userID).Error; err == nil {
				order.AddressID = &address.ID
			}
		}
	}

	totalItem := 0
	for _, item := range items {
		productID := item.ProductID
		order.Details = append(order.Details, models.OrderDetail{
			ProductID:    &productID,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			Quantity:     item.Quantity,
			Price:        item.Price,
			TotalPrice:   item.LineTotal(),
		})
		totalItem += item.Quantity
	}

	totals := services.CalculateOrderTotal(order.Details, req.DiscountPercent, h.cfg.ShippingFee)
	order.Subtotal = totals.Subtotal
	order.ShippingFee = totals.ShippingFee
	order.TotalPrice = totals.FinalTotal
	order.TotalItem = totalItem

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// Decrement stock for known products.
		for _, d := range order.Details {
			if d.ProductID == nil {
				continue
			}
			if err := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", *d.ProductID, d.Quantity).
				Update("stock", gorm.Expr("stock - ?", d.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Cart cleanup is best-effort; the order already exists.
	if err := h.cart.Clear(c.UserContext(), userID); err != nil {
		log.Printf("[Order] failed to clear cart for user %s: %v", userID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":           order.ID,
			"order_number": order.OrderNumber,
			"status":       order.Status,
			"order_date":   order.PlacedAt,
			"subtotal":     order.Subtotal,
			"shipping_fee": order.ShippingFee,
			"total_price":  order.TotalPrice,
			"total_item":   order.TotalItem,
		},
	})
}

// ListOrders returns orders for the authenticated user.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Where("user_id = ?", userID).Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		if !models.IsValidOrderStatus(status) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status filter")
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Details").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order for the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Details").
		First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	totalPrice := order.TotalPrice
	return c.JSON(fiber.Map{
		"success": true,
		"data":    order,
		"display": fiber.Map{
			"order_date":   services.FormatOrderDate(order.PlacedAt.Format(time.RFC3339)),
			"total_price":  services.FormatPrice(&totalPrice),
			"status_label": services.StatusLabel(string(order.Status)),
			"status_class": services.StatusColorClass(string(order.Status)),
		},
	})
}

// CancelOrder lets a customer cancel their own order while it is still
// PENDING. Later stages are admin territory.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if order.Status != models.OrderStatusPending {
		return fiber.NewError(fiber.StatusBadRequest, "only pending orders can be canceled")
	}

	updated, err := h.orders.UpdateOrderStatus(c.UserContext(), order.ID, string(models.OrderStatusCanceled))
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) || errors.Is(err, services.ErrOrderLocked) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"id":     updated.ID,
		"status": updated.Status,
	}})
}

func generateOrderNumber() string {
	return fmt.Sprintf("#%d", time.Now().UnixNano()%1000000000)
}
