package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/vinora/internal/models"
)

// ErrTokenNotFound is returned when no email token matches a lookup.
var ErrTokenNotFound = errors.New("email token not found")

// TokenStore persists ephemeral email tokens.
type TokenStore interface {
	Create(ctx context.Context, token *models.EmailToken) error
	FindByTokenAndType(ctx context.Context, token, tokenType string) (*models.EmailToken, error)
	FindValid(ctx context.Context, userID uuid.UUID, tokenType string, now time.Time) (*models.EmailToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
	DeleteUnused(ctx context.Context, userID uuid.UUID, tokenType string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// GormTokenStore is the postgres-backed TokenStore.
type GormTokenStore struct {
	db *gorm.DB
}

// NewTokenStore constructs a GormTokenStore.
func NewTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db}
}

func (s *GormTokenStore) Create(ctx context.Context, token *models.EmailToken) error {
	return s.db.WithContext(ctx).Create(token).Error
}

func (s *GormTokenStore) FindByTokenAndType(ctx context.Context, token, tokenType string) (*models.EmailToken, error) {
	var record models.EmailToken
	err := s.db.WithContext(ctx).
		Where("token = ? AND type = ?", token, tokenType).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *GormTokenStore) FindValid(ctx context.Context, userID uuid.UUID, tokenType string, now time.Time) (*models.EmailToken, error) {
	var record models.EmailToken
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND used = false AND expires_at > ?", userID, tokenType, now).
		Order("created_at desc").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &record, nil
}

// MarkUsed flips the used flag in a single update so a token can never
// be presented twice.
func (s *GormTokenStore) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	return s.db.WithContext(ctx).Model(&models.EmailToken{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"used": true, "used_at": usedAt}).Error
}

func (s *GormTokenStore) DeleteUnused(ctx context.Context, userID uuid.UUID, tokenType string) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND used = false", userID, tokenType).
		Delete(&models.EmailToken{}).Error
}

func (s *GormTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&models.EmailToken{})
	return result.RowsAffected, result.Error
}
