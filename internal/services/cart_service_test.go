package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vinora/internal/models"
	"github.com/example/vinora/internal/services"
	"github.com/example/vinora/internal/storage"
)

type fakeCartStore struct {
	carts map[uuid.UUID]map[uuid.UUID]models.CartItem
}

var _ storage.CartStore = (*fakeCartStore)(nil)

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[uuid.UUID]map[uuid.UUID]models.CartItem)}
}

func (f *fakeCartStore) GetItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0, len(f.carts[userID]))
	for _, item := range f.carts[userID] {
		items = append(items, item)
	}
	return items, nil
}

func (f *fakeCartStore) GetItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, bool, error) {
	item, ok := f.carts[userID][productID]
	if !ok {
		return nil, false, nil
	}
	return &item, true, nil
}

func (f *fakeCartStore) SetItem(ctx context.Context, userID uuid.UUID, item models.CartItem) error {
	if f.carts[userID] == nil {
		f.carts[userID] = make(map[uuid.UUID]models.CartItem)
	}
	f.carts[userID][item.ProductID] = item
	return nil
}

func (f *fakeCartStore) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	delete(f.carts[userID], productID)
	return nil
}

func (f *fakeCartStore) Clear(ctx context.Context, userID uuid.UUID) error {
	delete(f.carts, userID)
	return nil
}

func TestCartAddItemMergesQuantities(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()
	svc := services.NewCartService(newFakeCartStore())

	item := models.CartItem{
		ProductID:   productID,
		ProductName: "Dalat Red 750ml",
		Price:       120000,
		Quantity:    2,
	}

	added, err := svc.AddItem(ctx, userID, item)
	require.NoError(t, err)
	assert.Equal(t, 2, added.Quantity)

	item.Quantity = 3
	merged, err := svc.AddItem(ctx, userID, item)
	require.NoError(t, err)
	assert.Equal(t, 5, merged.Quantity)
	assert.Equal(t, int64(600000), merged.LineTotal())

	items, err := svc.Items(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestCartAddItemRefreshesSnapshot(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()
	svc := services.NewCartService(newFakeCartStore())

	_, err := svc.AddItem(ctx, userID, models.CartItem{ProductID: productID, Price: 100000, Quantity: 1})
	require.NoError(t, err)

	// Price changed between adds; the newest snapshot wins.
	merged, err := svc.AddItem(ctx, userID, models.CartItem{ProductID: productID, Price: 90000, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(90000), merged.Price)
	assert.Equal(t, 2, merged.Quantity)
}

func TestCartAddItemRejectsBadQuantity(t *testing.T) {
	ctx := context.Background()
	svc := services.NewCartService(newFakeCartStore())

	_, err := svc.AddItem(ctx, uuid.New(), models.CartItem{ProductID: uuid.New(), Quantity: 0})
	assert.ErrorIs(t, err, services.ErrQuantityInvalid)

	_, err = svc.AddItem(ctx, uuid.New(), models.CartItem{ProductID: uuid.New(), Quantity: -1})
	assert.ErrorIs(t, err, services.ErrQuantityInvalid)
}

func TestCartSetQuantity(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()
	store := newFakeCartStore()
	svc := services.NewCartService(store)

	_, err := svc.AddItem(ctx, userID, models.CartItem{ProductID: productID, Price: 50000, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.SetQuantity(ctx, userID, productID, 7))
	item, found, err := store.GetItem(ctx, userID, productID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 7, item.Quantity)

	// Zero removes the line.
	require.NoError(t, svc.SetQuantity(ctx, userID, productID, 0))
	_, found, err = store.GetItem(ctx, userID, productID)
	require.NoError(t, err)
	assert.False(t, found)

	// Setting quantity on a missing line is a no-op.
	require.NoError(t, svc.SetQuantity(ctx, userID, uuid.New(), 3))
	items, err := svc.Items(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartClear(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	svc := services.NewCartService(newFakeCartStore())

	_, err := svc.AddItem(ctx, userID, models.CartItem{ProductID: uuid.New(), Price: 10000, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, models.CartItem{ProductID: uuid.New(), Price: 20000, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, userID))

	items, err := svc.Items(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
