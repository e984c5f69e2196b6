package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/nguyentrg/threadnest/internal/config"
	"github.com/nguyentrg/threadnest/internal/handlers"
	"github.com/nguyentrg/threadnest/internal/metrics"
	"github.com/nguyentrg/threadnest/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	threadHandler *handlers.ThreadHandler,
	reportHandler *handlers.ReportHandler,
	notificationHandler *handlers.NotificationHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Everything below requires a valid token and an account in good
	// standing.
	protected := api.Group("", middleware.JWTProtected(cfg), middleware.RequireActive(db))

	// Users & social graph
	protected.Get("/users/me", userHandler.Me)
	protected.Put("/users/me", userHandler.UpdateProfile)
	protected.Post("/users/me/freeze", userHandler.Freeze)
	protected.Get("/users/me/blocked", userHandler.Blocked)
	protected.Get("/users/me/saved", threadHandler.Saved)
	protected.Get("/users/:username", userHandler.Get)
	protected.Post("/users/:id/follow", userHandler.FollowToggle)
	protected.Get("/users/:id/followers", userHandler.Followers)
	protected.Get("/users/:id/following", userHandler.Following)
	protected.Post("/users/:id/block", userHandler.Block)
	protected.Delete("/users/:id/block", userHandler.Unblock)
	protected.Get("/users/:userId/threads", threadHandler.ByUser)
	protected.Get("/users/:userId/reposts", threadHandler.RepostsByUser)

	// Threads & interactions
	protected.Post("/threads", threadHandler.Create)
	protected.Get("/threads", threadHandler.Feed)
	protected.Get("/threads/:id", threadHandler.Get)
	protected.Delete("/threads/:id", threadHandler.Delete)
	protected.Get("/threads/:id/replies", threadHandler.Replies)
	protected.Get("/threads/:id/likes", threadHandler.Likers)
	protected.Post("/threads/:id/like", threadHandler.LikeUnlike)
	protected.Post("/threads/:id/share", threadHandler.Share)
	protected.Post("/threads/:id/hide", threadHandler.Hide)
	protected.Post("/reposts", threadHandler.Repost)
	protected.Post("/saves", threadHandler.Save)

	// Notifications
	protected.Get("/notifications", notificationHandler.List)
	protected.Get("/notifications/unread", notificationHandler.UnreadCount)
	protected.Put("/notifications/:id", notificationHandler.MarkRead)

	// Reports — any authenticated user may file one
	protected.Post("/reports", reportHandler.Create)

	// Moderation panel
	mod := protected.Group("/admin", middleware.ModeratorRequired())
	mod.Get("/reports", reportHandler.List)
	mod.Get("/reports/:id", reportHandler.Get)
	mod.Put("/reports/advance", reportHandler.Advance)
	mod.Get("/users", adminHandler.ListUsers)
	mod.Post("/users/:id/ban", adminHandler.ToggleBan)
	mod.Get("/threads", adminHandler.ListThreads)
	mod.Put("/threads/:id/visibility", adminHandler.ToggleThreadVisibility)
	mod.Delete("/threads/:id", adminHandler.DeleteThread)

	// Role management is super-admin only
	protected.Put("/admin/users/:id/role", middleware.SuperAdminRequired(), adminHandler.UpdateRole)
}
