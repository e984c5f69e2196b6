package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nguyentrg/threadnest/internal/dto"
	"github.com/nguyentrg/threadnest/internal/models"
	"gorm.io/gorm"
)

// RequireActive loads the authenticated user and rejects banned accounts.
// An expired temporary ban is lifted in place, so suspended users regain
// access without moderator involvement. The loaded user is stored in
// c.Locals under "currentUser" for handlers downstream.
func RequireActive(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		if userID == uuid.Nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		switch user.AccountStatus {
		case models.StatusPermanentBan:
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Account is permanently banned",
			})
		case models.StatusTemporaryBan:
			if user.BanExpiration != nil && time.Now().After(*user.BanExpiration) {
				updates := map[string]any{"account_status": models.StatusActive, "ban_expiration": nil}
				if err := db.Model(&user).Updates(updates).Error; err != nil {
					slog.Error("failed to lift expired ban", "user_id", user.ID, "error", err)
				} else {
					user.AccountStatus = models.StatusActive
					user.BanExpiration = nil
				}
			}
			if user.AccountStatus == models.StatusTemporaryBan {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Error: true, Message: "Account is temporarily suspended",
				})
			}
		}

		c.Locals("currentUser", &user)
		return c.Next()
	}
}

// CurrentUser returns the user loaded by RequireActive, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("currentUser").(*models.User)
	return user
}
