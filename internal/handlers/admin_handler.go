package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nguyentrg/threadnest/internal/dto"
	"github.com/nguyentrg/threadnest/internal/services"
)

// AdminHandler serves the moderation console: user listing, bans, role
// management and forced thread removal.
type AdminHandler struct {
	userService   *services.UserService
	threadService *services.ThreadService
}

func NewAdminHandler(userService *services.UserService, threadService *services.ThreadService) *AdminHandler {
	return &AdminHandler{userService: userService, threadService: threadService}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, total, err := h.userService.ListUsers(
		c.Query("search"),
		c.QueryInt("page", 1),
		c.QueryInt("limit", 20),
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(fiber.Map{"users": users, "total": total})
}

func (h *AdminHandler) ToggleBan(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	status, err := h.userService.ToggleBan(userID)
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Ban toggled", "account_status": status})
}

func (h *AdminHandler) UpdateRole(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.userService.UpdateRole(userID, req.Role); err != nil {
		return userError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role updated"})
}

// ListThreads is the moderation view over threads, hidden ones included.
func (h *AdminHandler) ListThreads(c *fiber.Ctx) error {
	threads, total, err := h.threadService.AdminList(
		c.Query("search"),
		c.QueryInt("page", 1),
		c.QueryInt("limit", 20),
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.JSON(fiber.Map{"threads": threads, "total": total})
}

// ToggleThreadVisibility flips a thread's hidden flag; the only way back for
// a hidden thread.
func (h *AdminHandler) ToggleThreadVisibility(c *fiber.Ctx) error {
	threadID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	hidden, err := h.threadService.ToggleVisibility(threadID)
	if err != nil {
		return threadError(c, err)
	}

	message := "Thread visible"
	if hidden {
		message = "Thread hidden"
	}
	return c.JSON(fiber.Map{"message": message, "is_hidden": hidden})
}

// DeleteThread removes a thread and its reply tree regardless of ownership.
func (h *AdminHandler) DeleteThread(c *fiber.Ctx) error {
	threadID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.threadService.DeleteTree(threadID); err != nil {
		return threadError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Thread deleted"})
}
