package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/vinora/internal/config"
	"github.com/example/vinora/internal/middleware"
	"github.com/example/vinora/internal/models"
	"github.com/example/vinora/internal/services"
	"github.com/example/vinora/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	tokens *services.TokenService
	mailer *services.Mailer
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, tokens *services.TokenService, mailer *services.Mailer) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, tokens: tokens, mailer: mailer}
}

type registerRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	Password  string `json:"password" validate:"required,min=6"`
}

// Register creates a new customer account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		DisplayName:  fmt.Sprintf("%s %s", req.FirstName, req.LastName),
		PasswordHash: passwordHash,
		Role:         models.RoleCustomer,
		IsActive:     true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":           user.ID,
			"first_name":   user.FirstName,
			"last_name":    user.LastName,
			"email":        user.Email,
			"display_name": user.DisplayName,
		},
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an existing user. Accounts with two-factor enabled
// get a 6-digit code by email and a short-lived challenge token instead
// of a session; the session is issued by Verify2FA.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !user.IsActive {
		return fiber.NewError(fiber.StatusForbidden, "account is disabled")
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if user.TwoFactorEnabled {
		return h.startTwoFactorChallenge(c, &user)
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":           user.ID,
			"display_name": user.DisplayName,
			"email":        user.Email,
			"role":         user.Role,
		},
		"token": token,
	})
}

func (h *AuthHandler) startTwoFactorChallenge(c *fiber.Ctx, user *models.User) error {
	code, err := services.GenerateTwoFactorCode()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate code")
	}

	if _, err := h.tokens.SaveEmailToken(c.UserContext(), user.ID, code, models.TokenTypeTwoFactor, user.Email, h.cfg.TwoFactorTTL); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store verification code")
	}

	// Mail failure fails the whole login attempt; the user re-triggers.
	if err := h.mailer.SendTwoFactorCode(user.Email, user.DisplayName, code); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to send verification code")
	}

	challenge, err := utils.GenerateScopedToken(h.cfg.JWTSecret, user.ID, utils.ScopeTwoFactor, h.cfg.TwoFactorTTL)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success":             true,
		"two_factor_required": true,
		"challenge_token":     challenge,
	})
}

type verifyTwoFactorRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// Verify2FA completes a pending two-factor challenge and issues the
// session token.
func (h *AuthHandler) Verify2FA(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req verifyTwoFactorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	result, err := h.tokens.VerifyAndUseToken(c.UserContext(), req.Code, models.TokenTypeTwoFactor, user.Email)
	if err != nil {
		return err
	}

	if !result.Valid {
		msg := "invalid or expired code"
		if result.Used {
			msg = "code already used"
		} else if result.Expired {
			msg = "code expired"
		}
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":           user.ID,
			"display_name": user.DisplayName,
			"email":        user.Email,
			"role":         user.Role,
		},
		"token": token,
	})
}
