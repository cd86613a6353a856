package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/vinora/internal/models"
)

// CartStore keeps per-user session carts.
type CartStore interface {
	GetItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	GetItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, bool, error)
	SetItem(ctx context.Context, userID uuid.UUID, item models.CartItem) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// RedisCartStore stores each cart as a redis hash: one field per product.
type RedisCartStore struct {
	rdb *redis.Client
}

// NewCartStore constructs a RedisCartStore.
func NewCartStore(rdb *redis.Client) *RedisCartStore {
	return &RedisCartStore{rdb: rdb}
}

func cartKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:%s", userID)
}

func (s *RedisCartStore) GetItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	fields, err := s.rdb.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	items := make([]models.CartItem, 0, len(fields))
	for _, raw := range fields {
		var item models.CartItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *RedisCartStore) GetItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, bool, error) {
	raw, err := s.rdb.HGet(ctx, cartKey(userID), productID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var item models.CartItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, false, err
	}
	return &item, true, nil
}

func (s *RedisCartStore) SetItem(ctx context.Context, userID uuid.UUID, item models.CartItem) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return s.rdb.HSet(ctx, cartKey(userID), item.ProductID.String(), raw).Err()
}

func (s *RedisCartStore) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return s.rdb.HDel(ctx, cartKey(userID), productID.String()).Err()
}

func (s *RedisCartStore) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.rdb.Del(ctx, cartKey(userID)).Err()
}
