package http

import (
	"time"

	"github.com/fieldsync/backend/internal/config"
	"github.com/fieldsync/backend/internal/http/handlers"
	"github.com/fieldsync/backend/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	auditHandler *handlers.AuditHandler,
	clientHandler *handlers.ClientHandler,
	cacheHandler *handlers.CacheHandler,
	pendingHandler *handlers.PendingHandler,
	settingsHandler *handlers.SettingsHandler,
	cacheWS *handlers.CacheWS,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/device", authHandler.DeviceAuth)

	api.Use(middleware.RateLimitMiddleware(rdb, 300, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Audit log screen
	protected.Get("/audit-logs", auditHandler.ListAuditLogs)

	// Client screens
	protected.Get("/clients", clientHandler.ListClients)
	protected.Post("/clients", clientHandler.CreateClient)
	protected.Get("/clients/:id", clientHandler.GetClient)
	protected.Put("/clients/:id", clientHandler.UpdateClient)
	protected.Delete("/clients/:id", clientHandler.DeleteClient)

	// Offline document cache screen
	protected.Get("/cache/documents", cacheHandler.ListDocuments)
	protected.Get("/cache/stats", cacheHandler.GetStats)
	protected.Get("/cache/downloads", cacheHandler.ListDownloads)
	protected.Post("/cache/documents/:fileId/download", cacheHandler.DownloadDocument)
	protected.Delete("/cache/documents/:fileId", cacheHandler.RemoveDocument)
	protected.Post("/cache/purge-expired", cacheHandler.PurgeExpired)
	protected.Post("/cache/clear", cacheHandler.ClearAll)

	// Pending-action edit-and-retry screen
	protected.Get("/pending-actions", pendingHandler.ListPendingActions)
	protected.Post("/pending-actions", pendingHandler.QueuePendingAction)
	protected.Get("/pending-actions/:id", pendingHandler.GetPendingAction)
	protected.Post("/pending-actions/:id/retry", pendingHandler.RetryPendingAction)
	protected.Delete("/pending-actions/:id", pendingHandler.DiscardPendingAction)

	// Cache settings
	protected.Get("/settings/cache", settingsHandler.GetCacheSettings)
	protected.Put("/settings/cache", settingsHandler.UpdateCacheSettings)

	// WebSocket cache view stream
	app.Use("/ws/cache", handlers.WSUpgradeMiddleware())
	app.Get("/ws/cache", websocket.New(cacheWS.HandleWS))
}
