package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nguyentrg/threadnest/internal/dto"
	"github.com/nguyentrg/threadnest/internal/middleware"
	"github.com/nguyentrg/threadnest/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func userError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrSelfFollow),
		errors.Is(err, services.ErrSelfBlock),
		errors.Is(err, services.ErrNotBlocked):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrAlreadyBlocked):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrUserTaken):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	user, err := h.userService.GetByUsername(c.Params("username"))
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.userService.UpdateProfile(middleware.UserID(c), &req)
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) FollowToggle(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	following, err := h.userService.FollowToggle(c.Context(), middleware.UserID(c), targetID)
	if err != nil {
		return userError(c, err)
	}

	message := "Unfollowed"
	if following {
		message = "Followed"
	}
	return c.JSON(fiber.Map{"message": message, "following": following})
}

func (h *UserHandler) Followers(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	users, err := h.userService.Followers(userID)
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

func (h *UserHandler) Following(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	users, err := h.userService.Following(userID)
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

func (h *UserHandler) Block(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.userService.Block(middleware.UserID(c), targetID); err != nil {
		return userError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User blocked"})
}

func (h *UserHandler) Unblock(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.userService.Unblock(middleware.UserID(c), targetID); err != nil {
		return userError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User unblocked"})
}

func (h *UserHandler) Blocked(c *fiber.Ctx) error {
	ids, err := h.userService.BlockedIDs(middleware.UserID(c))
	if err != nil {
		return userError(c, err)
	}
	return c.JSON(fiber.Map{"blocked": ids})
}

func (h *UserHandler) Freeze(c *fiber.Ctx) error {
	if err := h.userService.Freeze(middleware.UserID(c)); err != nil {
		return userError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Account frozen"})
}
