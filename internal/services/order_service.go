package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/vinora/internal/models"
	"github.com/example/vinora/internal/storage"
)

// Status engine errors. Persistence failures propagate as-is; these two
// are the only rejections the engine itself produces.
var (
	ErrInvalidStatus = errors.New("invalid order status")
	ErrOrderLocked   = errors.New("order is in a terminal status")
)

// DefaultTotalTolerance is the currency rounding slack allowed between a
// stored total and a recomputed one.
const DefaultTotalTolerance = 1

// OrderTotals is the breakdown returned by CalculateOrderTotal.
type OrderTotals struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	ShippingFee    int64 `json:"shipping_fee"`
	FinalTotal     int64 `json:"final_total"`
}

// OrderService validates and applies order status transitions.
type OrderService struct {
	orders        storage.OrderStore
	notifications storage.NotificationStore
}

// NewOrderService constructs an OrderService.
func NewOrderService(orders storage.OrderStore, notifications storage.NotificationStore) *OrderService {
	return &OrderService{orders: orders, notifications: notifications}
}

// UpdateOrderStatus persists a new status and updated_at for the order.
//
// The engine rejects unknown statuses and any transition out of a
// terminal state (COMPLETED, CANCELED). It deliberately does not enforce
// adjacency between the remaining states: back-office staff may move an
// order straight from PENDING to COMPLETED.
//
// A transition to CANCELED additionally creates a notification for the
// order's owner. That step is best-effort: it runs detached, its failure
// is logged and never rolls back the status change.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*models.Order, error) {
	if !models.IsValidOrderStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status.IsTerminal() {
		return nil, ErrOrderLocked
	}

	status := models.OrderStatus(newStatus)
	now := time.Now()
	if err := s.orders.UpdateStatus(ctx, orderID, status, now); err != nil {
		return nil, err
	}

	order.Status = status
	order.UpdatedAt = now

	if status == models.OrderStatusCanceled {
		go s.notifyCancellation(order)
	}

	return order, nil
}

func (s *OrderService) notifyCancellation(order *models.Order) {
	orderID := order.ID
	n := &models.Notification{
		UserID:  order.UserID,
		OrderID: &orderID,
		Title:   "Đơn hàng đã bị hủy",
		Message: fmt.Sprintf("Đơn hàng %s của bạn đã bị hủy.", order.OrderNumber),
	}

	if err := s.notifications.Create(context.Background(), n); err != nil {
		log.Printf("[Order] cancellation notification failed for order %s: %v", order.ID, err)
	}
}

// CalculateOrderTotal computes the totals breakdown for a set of line
// items:
//
//	finalTotal = subtotal - subtotal*discountPercent/100 + shippingFee
//
// in integer VND units, discount rounded to the nearest unit. It is pure
// and is used both at checkout and to cross-check stored totals in the
// back office.
func CalculateOrderTotal(details []models.OrderDetail, discountPercent float64, shippingFee int64) OrderTotals {
	var subtotal int64
	for _, d := range details {
		subtotal += d.TotalPrice
	}

	discountAmount := int64(math.Round(float64(subtotal) * discountPercent / 100))

	return OrderTotals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		ShippingFee:    shippingFee,
		FinalTotal:     subtotal - discountAmount + shippingFee,
	}
}

// ValidateOrderTotal reports whether a stored total agrees with a
// recomputed one within the given tolerance.
func ValidateOrderTotal(calculated, stored, tolerance int64) bool {
	diff := calculated - stored
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// FormatOrderDate renders a raw timestamp as dd/mm/yyyy for display.
// Missing and unparsable inputs degrade to fixed placeholder strings
// instead of failing the page.
func FormatOrderDate(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Không có ngày"
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("02/01/2006")
		}
	}

	return "Ngày không hợp lệ"
}

// FormatPrice renders an amount as "1.000.000 VND". A nil amount renders
// as "0 VND".
func FormatPrice(amount *int64) string {
	var value int64
	if amount != nil {
		value = *amount
	}

	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	digits := fmt.Sprintf("%d", value)
	var b strings.Builder
	length := len(digits)
	for i, digit := range digits {
		if i > 0 && (length-i)%3 == 0 {
			b.WriteString(".")
		}
		b.WriteRune(digit)
	}

	return sign + b.String() + " VND"
}

var statusLabels = map[models.OrderStatus]string{
	models.OrderStatusPending:   "Chờ xử lý",
	models.OrderStatusApproved:  "Đã duyệt",
	models.OrderStatusShipping:  "Đang giao",
	models.OrderStatusCompleted: "Hoàn thành",
	models.OrderStatusCanceled:  "Đã hủy",
}

var statusColorClasses = map[models.OrderStatus]string{
	models.OrderStatusPending:   "bg-yellow-100 text-yellow-800",
	models.OrderStatusApproved:  "bg-blue-100 text-blue-800",
	models.OrderStatusShipping:  "bg-indigo-100 text-indigo-800",
	models.OrderStatusCompleted: "bg-green-100 text-green-800",
	models.OrderStatusCanceled:  "bg-red-100 text-red-800",
}

// StatusLabel returns the display label for a status. Unknown values
// fall back to the raw string.
func StatusLabel(status string) string {
	if label, ok := statusLabels[models.OrderStatus(status)]; ok {
		return label
	}
	return status
}

// StatusColorClass returns the badge classes for a status. Unknown
// values fall back to a neutral gray.
func StatusColorClass(status string) string {
	if class, ok := statusColorClasses[models.OrderStatus(status)]; ok {
		return class
	}
	return "bg-gray-100 text-gray-800"
}
