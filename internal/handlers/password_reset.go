package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/vinora/internal/config"
	"github.com/example/vinora/internal/models"
	"github.com/example/vinora/internal/services"
	"github.com/example/vinora/internal/utils"
)

// PasswordResetHandler manages forgot-password endpoints.
type PasswordResetHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	tokens *services.TokenService
	mailer *services.Mailer
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, cfg *config.Config, tokens *services.TokenService, mailer *services.Mailer) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, cfg: cfg, tokens: tokens, mailer: mailer}
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword initiates the password-reset flow: generates a link
// token, stores it, and emails the reset link. The response does not
// reveal whether the email has an account.
func (h *PasswordResetHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"success": true, "message": "if the email exists, a reset link has been sent"})
		}
		return err
	}

	token, err := services.GenerateResetToken()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	if _, err := h.tokens.SaveEmailToken(c.UserContext(), user.ID, token, models.TokenTypeReset, user.Email, h.cfg.ResetTokenTTL); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store reset token")
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", h.cfg.StorefrontURL, token)
	if err := h.mailer.SendResetPasswordLink(user.Email, user.DisplayName, resetLink); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to send reset email")
	}

	return c.JSON(fiber.Map{"success": true, "message": "if the email exists, a reset link has been sent"})
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required,len=32"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ResetPassword consumes a reset token and updates the user's password.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	result, err := h.tokens.VerifyAndUseToken(c.UserContext(), req.Token, models.TokenTypeReset, "")
	if err != nil {
		return err
	}

	if !result.Valid {
		msg := "invalid or expired reset token"
		if result.Used {
			msg = "reset token already used"
		} else if result.Expired {
			msg = "reset token expired"
		}
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	if err := h.db.Model(&models.User{}).
		Where("id = ?", result.UserID).
		Update("password_hash", hash).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update password")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password updated successfully",
	})
}
