package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/example/vinora/internal/models"
	"github.com/example/vinora/internal/storage"
)

const resetTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// VerifyResult is the outcome of a token verification. Validation
// failures are values, not errors: callers branch on the flags. Used and
// Expired are only set when that specific condition was hit; a plain
// miss (or an email mismatch) yields all-false so the caller cannot tell
// which emails have outstanding tokens.
type VerifyResult struct {
	Valid   bool      `json:"valid"`
	Used    bool      `json:"used,omitempty"`
	Expired bool      `json:"expired,omitempty"`
	UserID  uuid.UUID `json:"user_id,omitempty"`
}

// TokenService issues and verifies single-use email tokens for
// two-factor login and password reset.
type TokenService struct {
	store storage.TokenStore
}

// NewTokenService constructs a TokenService.
func NewTokenService(store storage.TokenStore) *TokenService {
	return &TokenService{store: store}
}

// GenerateTwoFactorCode returns a random 6-digit numeric code in
// 100000..999999. Paired with a short expiry and single use.
func GenerateTwoFactorCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateResetToken returns a 32-character random token from a
// URL-safe alphabet.
func GenerateResetToken() (string, error) {
	token := make([]byte, 32)
	alphabetLen := big.NewInt(int64(len(resetTokenAlphabet)))
	for i := range token {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		token[i] = resetTokenAlphabet[n.Int64()]
	}
	return string(token), nil
}

// SaveEmailToken stores a freshly generated token for the user. Any
// prior unused tokens of the same type are deleted first so at most one
// outstanding token per (user, type) exists at issuance; that cleanup is
// best-effort and a failure there never blocks the new token.
func (s *TokenService) SaveEmailToken(ctx context.Context, userID uuid.UUID, token, tokenType, email string, expiry time.Duration) (*models.EmailToken, error) {
	if err := s.store.DeleteUnused(ctx, userID, tokenType); err != nil {
		log.Printf("[Token] cleanup of prior %s tokens for user %s failed: %v", tokenType, userID, err)
	}

	record := &models.EmailToken{
		UserID:    userID,
		Token:     token,
		Type:      tokenType,
		Email:     email,
		ExpiresAt: time.Now().Add(expiry),
	}

	if err := s.store.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// VerifyAndUseToken looks a token up by (token, type) and consumes it.
// It fails closed: a miss, an email mismatch (when email is non-empty),
// a used token or an expired one all come back Valid:false. On success
// the record is marked used in a single update and the owning user ID is
// returned. No token is ever valid twice.
func (s *TokenService) VerifyAndUseToken(ctx context.Context, token, tokenType, email string) (VerifyResult, error) {
	record, err := s.store.FindByTokenAndType(ctx, token, tokenType)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return VerifyResult{}, nil
		}
		return VerifyResult{}, err
	}

	if email != "" && record.Email != email {
		// Indistinguishable from a miss.
		return VerifyResult{}, nil
	}

	if record.Used {
		return VerifyResult{Used: true}, nil
	}

	if record.Expired(time.Now()) {
		return VerifyResult{Expired: true}, nil
	}

	if err := s.store.MarkUsed(ctx, record.ID, time.Now()); err != nil {
		return VerifyResult{}, err
	}

	return VerifyResult{Valid: true, UserID: record.UserID}, nil
}

// FindValidToken returns the newest unused, unexpired token for the
// user and type, or nil if none is outstanding.
func (s *TokenService) FindValidToken(ctx context.Context, userID uuid.UUID, tokenType string) (*models.EmailToken, error) {
	record, err := s.store.FindValid(ctx, userID, tokenType, time.Now())
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// CleanupExpiredTokens deletes every token past its expiry, used or
// not, and returns the count removed. Maintenance sweep, not part of any
// user-facing flow.
func (s *TokenService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.store.DeleteExpired(ctx, time.Now())
}
