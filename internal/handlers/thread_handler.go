package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/nguyentrg/threadnest/internal/dto"
	"github.com/nguyentrg/threadnest/internal/middleware"
	"github.com/nguyentrg/threadnest/internal/services"
)

type ThreadHandler struct {
	threadService *services.ThreadService
}

func NewThreadHandler(threadService *services.ThreadService) *ThreadHandler {
	return &ThreadHandler{threadService: threadService}
}

func threadError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrThreadNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotThreadOwner), errors.Is(err, services.ErrHideForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+param)
	}
	return id, nil
}

func (h *ThreadHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateThreadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	thread, err := h.threadService.Create(c.Context(), middleware.UserID(c), &req)
	if err != nil {
		if errors.Is(err, services.ErrThreadNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Parent thread not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(thread)
}

func (h *ThreadHandler) Feed(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	threads, isNext, err := h.threadService.Feed(page, limit)
	if err != nil {
		return threadError(c, err)
	}

	return c.JSON(fiber.Map{"threads": threads, "is_next": isNext})
}

func (h *ThreadHandler) Get(c *fiber.Ctx) error {
	threadID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	thread, err := h.threadService.GetByID(threadID)
	if err != nil {
		return threadError(c, err)
	}
	return c.JSON(thread)
}

func (h *ThreadHandler) Replies(c *fiber.Ctx) error {
	threadID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	threads, isNext, err := h.threadService.Replies(threadID, c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return threadError(c, err)
	}
	return c.JSON(fiber.Map{"threads": threads, "is_next": isNext})
}

func (h *ThreadHandler) ByUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}

	threads, isNext, err := h.threadService.ByUser(userID, c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return threadError(c, err)
	}
	return c.JSON(fiber.Map{"threads": threads, "is_next": isNext})
}

func (h *ThreadHandler) Likers(c *fiber.Ctx) error {
	threadID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	users, err := h.threadService.Likers(threadID)
	if err != nil {
		return threadError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

func (h *ThreadHandler) LikeUnlike(c *fiber.Ctx) error {
	threadID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	liked, count, err := h.threadService.LikeUnlike(c.Context(), threadID, middleware.UserID(c))
	if err != nil {
		return threadError(c, err)
	}

	message := "Thread unliked"
	if liked {
		message = "Thread liked"
	}
	return c.JSON(dto.LikeResponse{Success: true, Message: message, LikeCount: count})
}

func (h *ThreadHandler) Share(c *fiber.Ctx) error {
	threadID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	count, err := h.threadService.Share(threadID)
	if err != nil {
		return threadError(c, err)
	}
	return c.JSON(dto.ShareResponse{Success: true, Message: "Thread shared", ShareCount: count})
}

func (h *ThreadHandler) Hide(c *fiber.Ctx) error {
	threadID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.threadService.Hide(threadID, middleware.CurrentUser(c)); err != nil {
		return threadError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Thread hidden"})
}

func (h *ThreadHandler) Delete(c *fiber.Ctx) error {
	threadID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.threadService.Delete(threadID, middleware.UserID(c)); err != nil {
		return threadError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Thread deleted"})
}

func (h *ThreadHandler) Repost(c *fiber.Ctx) error {
	var req dto.RepostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	reposted, count, err := h.threadService.RepostToggle(req.ThreadID, middleware.UserID(c))
	if err != nil {
		return threadError(c, err)
	}

	message := "Repost removed"
	if reposted {
		message = "Thread reposted"
	}
	return c.JSON(dto.RepostResponse{Success: true, Message: message, Reposted: reposted, RepostCount: count})
}

func (h *ThreadHandler) Save(c *fiber.Ctx) error {
	var req dto.SaveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	saved, err := h.threadService.SaveToggle(req.ThreadID, middleware.UserID(c))
	if err != nil {
		return threadError(c, err)
	}

	message := "Thread unsaved"
	if saved {
		message = "Thread saved"
	}
	return c.JSON(dto.SaveResponse{Success: true, Message: message, Saved: saved})
}

func (h *ThreadHandler) RepostsByUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}

	threads, isNext, err := h.threadService.RepostsByUser(userID, c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return threadError(c, err)
	}
	return c.JSON(fiber.Map{"threads": threads, "is_next": isNext})
}

func (h *ThreadHandler) Saved(c *fiber.Ctx) error {
	threads, err := h.threadService.SavedByUser(middleware.UserID(c))
	if err != nil {
		return threadError(c, err)
	}
	return c.JSON(fiber.Map{"threads": threads})
}
