package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/vinora/internal/models"
	"github.com/example/vinora/internal/services"
	"github.com/example/vinora/internal/storage"
	"github.com/example/vinora/internal/utils"
)

// AdminHandler manages back-office endpoints.
type AdminHandler struct {
	db     *gorm.DB
	orders *services.OrderService
	tokens *services.TokenService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, orders *services.OrderService, tokens *services.TokenService) *AdminHandler {
	return &AdminHandler{db: db, orders: orders, tokens: tokens}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalUsers int64
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return err
	}

	var totalProducts int64
	if err := h.db.Model(&models.Product{}).Count(&totalProducts).Error; err != nil {
		return err
	}

	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	ordersByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		ordersByStatus[sc.Status] = sc.Count
	}

	// Revenue counts completed orders only.
	var totalRevenue int64
	if err := h.db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusCompleted).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	var todayRevenue int64
	if err := h.db.Model(&models.Order{}).
		Where("status = ? AND placed_at::date = CURRENT_DATE", models.OrderStatusCompleted).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&todayRevenue).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_users":      totalUsers,
			"total_products":   totalProducts,
			"total_orders":     totalOrders,
			"total_revenue":    totalRevenue,
			"today_revenue":    todayRevenue,
			"orders_by_status": ordersByStatus,
		},
	})
}

// ListAllOrders returns all orders with pagination, filtering, and user info.
func (h *AdminHandler) ListAllOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		if !models.IsValidOrderStatus(status) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status filter")
		}
		query = query.Where("status = ?", status)
	}

	if search := c.Query("search"); search != "" {
		query = query.Where("order_number ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Details").Preload("User").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	type orderRow struct {
		models.Order
		StatusLabel string `json:"status_label"`
		StatusClass string `json:"status_class"`
		Editable    bool   `json:"editable"`
	}

	rows := make([]orderRow, len(orders))
	for i, o := range orders {
		rows[i] = orderRow{
			Order:       o,
			StatusLabel: services.StatusLabel(string(o.Status)),
			StatusClass: services.StatusColorClass(string(o.Status)),
			Editable:    o.Status.Editable(),
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    rows,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrderDetail returns one order with its lines, plus a recomputed
// totals breakdown cross-checked against the stored total. A mismatch is
// reported in the payload, never treated as an error.
func (h *AdminHandler) GetOrderDetail(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Details").Preload("User").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	totals := services.CalculateOrderTotal(order.Details, order.Discount, order.ShippingFee)
	totalPrice := order.TotalPrice

	return c.JSON(fiber.Map{
		"success": true,
		"data":    order,
		"totals":  totals,
		"totals_match": services.ValidateOrderTotal(
			totals.FinalTotal, order.TotalPrice, services.DefaultTotalTolerance),
		"display": fiber.Map{
			"order_date":   services.FormatOrderDate(order.PlacedAt.Format(time.RFC3339)),
			"total_price":  services.FormatPrice(&totalPrice),
			"status_label": services.StatusLabel(string(order.Status)),
			"status_class": services.StatusColorClass(string(order.Status)),
			"editable":     order.Status.Editable(),
		},
	})
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateOrderStatus applies a status transition through the engine.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	order, err := h.orders.UpdateOrderStatus(c.UserContext(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrOrderLocked):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, storage.ErrOrderNotFound):
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{
		"id":         order.ID,
		"status":     order.Status,
		"updated_at": order.UpdatedAt,
	}})
}

// ListAllUsers returns registered users with pagination and search.
func (h *AdminHandler) ListAllUsers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.User{})

	if search := c.Query("search"); search != "" {
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%",
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	// Select specific fields to avoid exposing password hash.
	var users []models.User
	if err := query.Select("id, first_name, last_name, email, phone, display_name, role, is_active, two_factor_enabled, created_at, updated_at").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&users).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type updateUserRequest struct {
	Role     *string `json:"role" validate:"omitempty,oneof=customer admin"`
	IsActive *bool   `json:"is_active"`
}

// UpdateUser changes a user's role or active flag.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}
	updates["updated_at"] = time.Now()

	result := h.db.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "user updated"})
}

// RecentOrders returns the most recent 5 orders for the dashboard.
func (h *AdminHandler) RecentOrders(c *fiber.Ctx) error {
	var orders []models.Order
	if err := h.db.Preload("Details").Preload("User").
		Order("placed_at desc").
		Limit(5).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
	})
}

// CleanupExpiredTokens removes every email token past its expiry.
// Maintenance endpoint; not called from any user-facing flow.
func (h *AdminHandler) CleanupExpiredTokens(c *fiber.Ctx) error {
	deleted, err := h.tokens.CleanupExpiredTokens(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"deleted": deleted}})
}
