package models

import (
	"time"

	"github.com/google/uuid"
)

// Email token types.
const (
	TokenTypeTwoFactor = "2fa"
	TokenTypeReset     = "reset"
)

// EmailToken is a short-lived, single-use credential sent to a user by email:
// a 6-digit code for two-factor login or a link token for password reset.
// Used tokens are kept (used flag, not deletion) so the audit trail survives.
type EmailToken struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	Token     string     `gorm:"index" json:"token"`
	Type      string     `gorm:"index" json:"type"`
	Email     string     `json:"email"`
	ExpiresAt time.Time  `json:"expires_at"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *EmailToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
