package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/vinora/internal/config"
	"github.com/example/vinora/internal/models"
	"github.com/example/vinora/internal/utils"
)

const userContextKey = "currentUserID"

// AuthMiddleware validates session JWTs and loads the authenticated user
// ID into context. Pending-2FA tokens are rejected here; they are only
// good for the verify endpoint.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, scope, err := parseBearer(c, cfg.JWTSecret)
		if err != nil {
			return err
		}

		if scope != utils.ScopeSession {
			return fiber.NewError(fiber.StatusUnauthorized, "two-factor verification required")
		}

		c.Locals(userContextKey, userID)
		return c.Next()
	}
}

// TwoFactorMiddleware accepts only pending-2FA tokens, for the
// challenge-completion endpoint.
func TwoFactorMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, scope, err := parseBearer(c, cfg.JWTSecret)
		if err != nil {
			return err
		}

		if scope != utils.ScopeTwoFactor {
			return fiber.NewError(fiber.StatusUnauthorized, "not a two-factor token")
		}

		c.Locals(userContextKey, userID)
		return c.Next()
	}
}

// AdminOnly allows only active admin accounts through. Must run after
// AuthMiddleware.
func AdminOnly(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := GetCurrentUserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		if user.Role != models.RoleAdmin || !user.IsActive {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}

		return c.Next()
	}
}

func parseBearer(c *fiber.Ctx, secret string) (uuid.UUID, string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return uuid.Nil, "", fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return uuid.Nil, "", fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
	}

	userID, scope, err := utils.ParseToken(secret, parts[1])
	if err != nil {
		return uuid.Nil, "", fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	return userID, scope, nil
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}
