package services_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vinora/internal/models"
	"github.com/example/vinora/internal/services"
	"github.com/example/vinora/internal/storage"
)

type fakeTokenStore struct {
	tokens          map[uuid.UUID]*models.EmailToken
	deleteUnusedErr error
}

var _ storage.TokenStore = (*fakeTokenStore)(nil)

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[uuid.UUID]*models.EmailToken)}
}

func (f *fakeTokenStore) Create(ctx context.Context, token *models.EmailToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	f.tokens[token.ID] = token
	return nil
}

func (f *fakeTokenStore) FindByTokenAndType(ctx context.Context, token, tokenType string) (*models.EmailToken, error) {
	for _, t := range f.tokens {
		if t.Token == token && t.Type == tokenType {
			copied := *t
			return &copied, nil
		}
	}
	return nil, storage.ErrTokenNotFound
}

func (f *fakeTokenStore) FindValid(ctx context.Context, userID uuid.UUID, tokenType string, now time.Time) (*models.EmailToken, error) {
	for _, t := range f.tokens {
		if t.UserID == userID && t.Type == tokenType && !t.Used && t.ExpiresAt.After(now) {
			copied := *t
			return &copied, nil
		}
	}
	return nil, storage.ErrTokenNotFound
}

func (f *fakeTokenStore) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	t, ok := f.tokens[id]
	if !ok {
		return storage.ErrTokenNotFound
	}
	t.Used = true
	t.UsedAt = &usedAt
	return nil
}

func (f *fakeTokenStore) DeleteUnused(ctx context.Context, userID uuid.UUID, tokenType string) error {
	if f.deleteUnusedErr != nil {
		return f.deleteUnusedErr
	}
	for id, t := range f.tokens {
		if t.UserID == userID && t.Type == tokenType && !t.Used {
			delete(f.tokens, id)
		}
	}
	return nil
}

func (f *fakeTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var deleted int64
	for id, t := range f.tokens {
		if t.ExpiresAt.Before(now) {
			delete(f.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func TestGenerateTwoFactorCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := services.GenerateTwoFactorCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateResetToken(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		token, err := services.GenerateResetToken()
		require.NoError(t, err)
		require.Len(t, token, 32)

		for _, r := range token {
			assert.True(t, strings.ContainsRune(alphabet, r), "unexpected character %q", r)
		}

		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}

func TestSaveEmailToken(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("creates a token with expiry", func(t *testing.T) {
		store := newFakeTokenStore()
		svc := services.NewTokenService(store)

		record, err := svc.SaveEmailToken(ctx, userID, "123456", models.TokenTypeTwoFactor, "an@example.com", 5*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, userID, record.UserID)
		assert.Equal(t, "123456", record.Token)
		assert.False(t, record.Used)
		assert.WithinDuration(t, time.Now().Add(5*time.Minute), record.ExpiresAt, 2*time.Second)
	})

	t.Run("replaces prior unused tokens of the same type", func(t *testing.T) {
		store := newFakeTokenStore()
		svc := services.NewTokenService(store)

		first, err := svc.SaveEmailToken(ctx, userID, "111111", models.TokenTypeTwoFactor, "an@example.com", 5*time.Minute)
		require.NoError(t, err)

		_, err = svc.SaveEmailToken(ctx, userID, "222222", models.TokenTypeTwoFactor, "an@example.com", 5*time.Minute)
		require.NoError(t, err)

		_, ok := store.tokens[first.ID]
		assert.False(t, ok, "prior unused token should be deleted")
		assert.Len(t, store.tokens, 1)
	})

	t.Run("does not touch tokens of another type", func(t *testing.T) {
		store := newFakeTokenStore()
		svc := services.NewTokenService(store)

		reset, err := svc.SaveEmailToken(ctx, userID, strings.Repeat("r", 32), models.TokenTypeReset, "an@example.com", 5*time.Minute)
		require.NoError(t, err)

		_, err = svc.SaveEmailToken(ctx, userID, "333333", models.TokenTypeTwoFactor, "an@example.com", 5*time.Minute)
		require.NoError(t, err)

		_, ok := store.tokens[reset.ID]
		assert.True(t, ok, "reset token must survive a 2fa issuance")
	})

	t.Run("cleanup failure still issues the token", func(t *testing.T) {
		store := newFakeTokenStore()
		store.deleteUnusedErr = errors.New("delete failed")
		svc := services.NewTokenService(store)

		record, err := svc.SaveEmailToken(ctx, userID, "444444", models.TokenTypeTwoFactor, "an@example.com", 5*time.Minute)
		require.NoError(t, err)
		assert.NotNil(t, record)
		assert.Len(t, store.tokens, 1)
	})
}

func TestVerifyAndUseToken(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	issue := func(t *testing.T, svc *services.TokenService, token, tokenType string, ttl time.Duration) *models.EmailToken {
		t.Helper()
		record, err := svc.SaveEmailToken(ctx, userID, token, tokenType, "an@example.com", ttl)
		require.NoError(t, err)
		return record
	}

	t.Run("valid token is consumed exactly once", func(t *testing.T) {
		store := newFakeTokenStore()
		svc := services.NewTokenService(store)
		issue(t, svc, "123456", models.TokenTypeTwoFactor, 5*time.Minute)

		first, err := svc.VerifyAndUseToken(ctx, "123456", models.TokenTypeTwoFactor, "an@example.com")
		require.NoError(t, err)
		assert.True(t, first.Valid)
		assert.Equal(t, userID, first.UserID)

		second, err := svc.VerifyAndUseToken(ctx, "123456", models.TokenTypeTwoFactor, "an@example.com")
		require.NoError(t, err)
		assert.False(t, second.Valid)
		assert.True(t, second.Used)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		store := newFakeTokenStore()
		svc := services.NewTokenService(store)
		issue(t, svc, "654321", models.TokenTypeTwoFactor, -time.Minute)

		result, err := svc.VerifyAndUseToken(ctx, "654321", models.TokenTypeTwoFactor, "an@example.com")
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.True(t, result.Expired)
		assert.False(t, result.Used)
	})

	t.Run("unknown token fails closed", func(t *testing.T) {
		svc := services.NewTokenService(newFakeTokenStore())

		result, err := svc.VerifyAndUseToken(ctx, "000000", models.TokenTypeTwoFactor, "")
		require.NoError(t, err)
		assert.Equal(t, services.VerifyResult{}, result)
	})

	t.Run("email mismatch looks like a miss", func(t *testing.T) {
		store := newFakeTokenStore()
		svc := services.NewTokenService(store)
		issue(t, svc, "123456", models.TokenTypeTwoFactor, 5*time.Minute)

		result, err := svc.VerifyAndUseToken(ctx, "123456", models.TokenTypeTwoFactor, "other@example.com")
		require.NoError(t, err)
		assert.Equal(t, services.VerifyResult{}, result)

		// The token was not burned by the mismatch.
		ok, err := svc.VerifyAndUseToken(ctx, "123456", models.TokenTypeTwoFactor, "an@example.com")
		require.NoError(t, err)
		assert.True(t, ok.Valid)
	})

	t.Run("wrong type does not match", func(t *testing.T) {
		store := newFakeTokenStore()
		svc := services.NewTokenService(store)
		issue(t, svc, "123456", models.TokenTypeTwoFactor, 5*time.Minute)

		result, err := svc.VerifyAndUseToken(ctx, "123456", models.TokenTypeReset, "an@example.com")
		require.NoError(t, err)
		assert.False(t, result.Valid)
	})

	t.Run("types are isolated", func(t *testing.T) {
		store := newFakeTokenStore()
		svc := services.NewTokenService(store)
		issue(t, svc, "123456", models.TokenTypeTwoFactor, 5*time.Minute)
		resetToken := strings.Repeat("x", 32)
		issue(t, svc, resetToken, models.TokenTypeReset, 5*time.Minute)

		used, err := svc.VerifyAndUseToken(ctx, "123456", models.TokenTypeTwoFactor, "an@example.com")
		require.NoError(t, err)
		require.True(t, used.Valid)

		result, err := svc.VerifyAndUseToken(ctx, resetToken, models.TokenTypeReset, "")
		require.NoError(t, err)
		assert.True(t, result.Valid, "reset token must stay valid after the 2fa token is consumed")
	})
}

func TestFindValidToken(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	store := newFakeTokenStore()
	svc := services.NewTokenService(store)

	found, err := svc.FindValidToken(ctx, userID, models.TokenTypeTwoFactor)
	require.NoError(t, err)
	assert.Nil(t, found)

	record, err := svc.SaveEmailToken(ctx, userID, "123456", models.TokenTypeTwoFactor, "an@example.com", 5*time.Minute)
	require.NoError(t, err)

	found, err = svc.FindValidToken(ctx, userID, models.TokenTypeTwoFactor)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, record.ID, found.ID)

	// Consumed tokens no longer count as outstanding.
	_, err = svc.VerifyAndUseToken(ctx, "123456", models.TokenTypeTwoFactor, "")
	require.NoError(t, err)

	found, err = svc.FindValidToken(ctx, userID, models.TokenTypeTwoFactor)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCleanupExpiredTokens(t *testing.T) {
	ctx := context.Background()
	store := newFakeTokenStore()
	svc := services.NewTokenService(store)

	fresh, err := svc.SaveEmailToken(ctx, uuid.New(), "111111", models.TokenTypeTwoFactor, "a@example.com", 5*time.Minute)
	require.NoError(t, err)

	_, err = svc.SaveEmailToken(ctx, uuid.New(), "222222", models.TokenTypeTwoFactor, "b@example.com", -time.Minute)
	require.NoError(t, err)

	// Expired and already used: still swept.
	usedExpired, err := svc.SaveEmailToken(ctx, uuid.New(), "333333", models.TokenTypeTwoFactor, "c@example.com", -time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.MarkUsed(ctx, usedExpired.ID, time.Now()))

	deleted, err := svc.CleanupExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, ok := store.tokens[fresh.ID]
	assert.True(t, ok, "unexpired token must survive the sweep")
}
