package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vinora/internal/models"
	"github.com/example/vinora/internal/services"
	"github.com/example/vinora/internal/storage"
)

type fakeOrderStore struct {
	orders    map[uuid.UUID]*models.Order
	updateErr error
}

var _ storage.OrderStore = (*fakeOrderStore)(nil)

func newFakeOrderStore(orders ...*models.Order) *fakeOrderStore {
	store := &fakeOrderStore{orders: make(map[uuid.UUID]*models.Order)}
	for _, o := range orders {
		store.orders[o.ID] = o
	}
	return store
}

func (f *fakeOrderStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, updatedAt time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	order, ok := f.orders[id]
	if !ok {
		return storage.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = updatedAt
	return nil
}

type fakeNotificationStore struct {
	mu      sync.Mutex
	created []*models.Notification
	err     error
}

var _ storage.NotificationStore = (*fakeNotificationStore)(nil)

func (f *fakeNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func pendingOrder() *models.Order {
	return &models.Order{
		BaseModel:   models.BaseModel{ID: uuid.New()},
		UserID:      uuid.New(),
		OrderNumber: "#123456789",
		Status:      models.OrderStatusPending,
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("valid transition is persisted", func(t *testing.T) {
		order := pendingOrder()
		store := newFakeOrderStore(order)
		svc := services.NewOrderService(store, &fakeNotificationStore{})

		updated, err := svc.UpdateOrderStatus(ctx, order.ID, "APPROVED")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusApproved, updated.Status)
		assert.Equal(t, models.OrderStatusApproved, store.orders[order.ID].Status)
		assert.False(t, store.orders[order.ID].UpdatedAt.IsZero())
	})

	t.Run("skipping intermediate states is allowed", func(t *testing.T) {
		order := pendingOrder()
		store := newFakeOrderStore(order)
		svc := services.NewOrderService(store, &fakeNotificationStore{})

		_, err := svc.UpdateOrderStatus(ctx, order.ID, "COMPLETED")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCompleted, store.orders[order.ID].Status)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		order := pendingOrder()
		svc := services.NewOrderService(newFakeOrderStore(order), &fakeNotificationStore{})

		_, err := svc.UpdateOrderStatus(ctx, order.ID, "SHIPPED")
		assert.ErrorIs(t, err, services.ErrInvalidStatus)

		_, err = svc.UpdateOrderStatus(ctx, order.ID, "pending")
		assert.ErrorIs(t, err, services.ErrInvalidStatus)
	})

	t.Run("terminal orders are locked", func(t *testing.T) {
		for _, status := range []models.OrderStatus{models.OrderStatusCompleted, models.OrderStatusCanceled} {
			order := pendingOrder()
			order.Status = status
			svc := services.NewOrderService(newFakeOrderStore(order), &fakeNotificationStore{})

			_, err := svc.UpdateOrderStatus(ctx, order.ID, "APPROVED")
			assert.ErrorIs(t, err, services.ErrOrderLocked, "status %s", status)
		}
	})

	t.Run("missing order propagates not found", func(t *testing.T) {
		svc := services.NewOrderService(newFakeOrderStore(), &fakeNotificationStore{})

		_, err := svc.UpdateOrderStatus(ctx, uuid.New(), "APPROVED")
		assert.ErrorIs(t, err, storage.ErrOrderNotFound)
	})

	t.Run("persistence failure propagates", func(t *testing.T) {
		order := pendingOrder()
		store := newFakeOrderStore(order)
		store.updateErr = errors.New("connection reset")
		svc := services.NewOrderService(store, &fakeNotificationStore{})

		_, err := svc.UpdateOrderStatus(ctx, order.ID, "APPROVED")
		assert.Error(t, err)
		assert.Equal(t, models.OrderStatusPending, store.orders[order.ID].Status)
	})

	t.Run("cancellation notifies the owner", func(t *testing.T) {
		order := pendingOrder()
		notifications := &fakeNotificationStore{}
		svc := services.NewOrderService(newFakeOrderStore(order), notifications)

		_, err := svc.UpdateOrderStatus(ctx, order.ID, "CANCELED")
		require.NoError(t, err)

		assert.Eventually(t, func() bool { return notifications.count() == 1 }, time.Second, 10*time.Millisecond)

		notifications.mu.Lock()
		defer notifications.mu.Unlock()
		assert.Equal(t, order.UserID, notifications.created[0].UserID)
		assert.Equal(t, order.ID, *notifications.created[0].OrderID)
	})

	t.Run("notification failure does not roll back the cancellation", func(t *testing.T) {
		order := pendingOrder()
		store := newFakeOrderStore(order)
		notifications := &fakeNotificationStore{err: errors.New("insert failed")}
		svc := services.NewOrderService(store, notifications)

		updated, err := svc.UpdateOrderStatus(ctx, order.ID, "CANCELED")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCanceled, updated.Status)
		assert.Equal(t, models.OrderStatusCanceled, store.orders[order.ID].Status)
	})

	t.Run("non-cancellation transitions do not notify", func(t *testing.T) {
		order := pendingOrder()
		notifications := &fakeNotificationStore{}
		svc := services.NewOrderService(newFakeOrderStore(order), notifications)

		_, err := svc.UpdateOrderStatus(ctx, order.ID, "APPROVED")
		require.NoError(t, err)

		time.Sleep(50 * time.Millisecond)
		assert.Zero(t, notifications.count())
	})
}

func details(totals ...int64) []models.OrderDetail {
	out := make([]models.OrderDetail, len(totals))
	for i, tp := range totals {
		out[i] = models.OrderDetail{TotalPrice: tp}
	}
	return out
}

func TestCalculateOrderTotal(t *testing.T) {
	tests := []struct {
		name        string
		details     []models.OrderDetail
		discount    float64
		shippingFee int64
		want        services.OrderTotals
	}{
		{
			name:        "two lines with discount and shipping",
			details:     details(100000, 200000),
			discount:    10,
			shippingFee: 15000,
			want: services.OrderTotals{
				Subtotal:       300000,
				DiscountAmount: 30000,
				ShippingFee:    15000,
				FinalTotal:     285000,
			},
		},
		{
			name:    "empty cart",
			details: details(),
			want:    services.OrderTotals{},
		},
		{
			name:        "no discount",
			details:     details(50000),
			shippingFee: 20000,
			want: services.OrderTotals{
				Subtotal:    50000,
				ShippingFee: 20000,
				FinalTotal:  70000,
			},
		},
		{
			name:     "fractional discount rounds to nearest unit",
			details:  details(1001),
			discount: 5,
			want: services.OrderTotals{
				Subtotal:       1001,
				DiscountAmount: 50,
				FinalTotal:     951,
			},
		},
		{
			name:     "full discount",
			details:  details(80000),
			discount: 100,
			want: services.OrderTotals{
				Subtotal:       80000,
				DiscountAmount: 80000,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.CalculateOrderTotal(tt.details, tt.discount, tt.shippingFee)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateOrderTotal(t *testing.T) {
	assert.True(t, services.ValidateOrderTotal(100, 101, services.DefaultTotalTolerance))
	assert.True(t, services.ValidateOrderTotal(101, 100, services.DefaultTotalTolerance))
	assert.False(t, services.ValidateOrderTotal(100, 105, services.DefaultTotalTolerance))
	assert.True(t, services.ValidateOrderTotal(100, 105, 5))
	assert.True(t, services.ValidateOrderTotal(200, 200, 0))
}

func TestFormatOrderDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2024-08-14T00:00:00Z", "14/08/2024"},
		{"2024-08-14", "14/08/2024"},
		{"2024-12-01 18:30:00", "01/12/2024"},
		{"", "Không có ngày"},
		{"   ", "Không có ngày"},
		{"abc", "Ngày không hợp lệ"},
		{"14/08/2024", "Ngày không hợp lệ"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, services.FormatOrderDate(tt.raw), "input %q", tt.raw)
	}
}

func TestFormatPrice(t *testing.T) {
	price := func(v int64) *int64 { return &v }

	assert.Equal(t, "1.000.000 VND", services.FormatPrice(price(1000000)))
	assert.Equal(t, "285.000 VND", services.FormatPrice(price(285000)))
	assert.Equal(t, "999 VND", services.FormatPrice(price(999)))
	assert.Equal(t, "0 VND", services.FormatPrice(price(0)))
	assert.Equal(t, "0 VND", services.FormatPrice(nil))
	assert.Equal(t, "-15.000 VND", services.FormatPrice(price(-15000)))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Chờ xử lý", services.StatusLabel("PENDING"))
	assert.Equal(t, "Hoàn thành", services.StatusLabel("COMPLETED"))

	// Unknown statuses fall through to the raw string.
	assert.Equal(t, "SHIPPED", services.StatusLabel("SHIPPED"))
	assert.Equal(t, "", services.StatusLabel(""))
}

func TestStatusColorClass(t *testing.T) {
	assert.Equal(t, "bg-yellow-100 text-yellow-800", services.StatusColorClass("PENDING"))
	assert.Equal(t, "bg-red-100 text-red-800", services.StatusColorClass("CANCELED"))
	assert.Equal(t, "bg-gray-100 text-gray-800", services.StatusColorClass("SHIPPED"))
	assert.Equal(t, "bg-gray-100 text-gray-800", services.StatusColorClass(""))
}
