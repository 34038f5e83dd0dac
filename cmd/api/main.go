package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fieldsync/backend/internal/config"
	"github.com/fieldsync/backend/internal/db"
	"github.com/fieldsync/backend/internal/events"
	apphttp "github.com/fieldsync/backend/internal/http"
	"github.com/fieldsync/backend/internal/http/handlers"
	"github.com/fieldsync/backend/internal/prefs"
	"github.com/fieldsync/backend/internal/repositories"
	"github.com/fieldsync/backend/internal/services"
	"github.com/fieldsync/backend/internal/upstream"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	auditRepo := repositories.NewCachedAuditRepo(pool)
	clientRepo := repositories.NewCachedClientRepo(pool)
	documentRepo := repositories.NewDocumentRepo(pool)
	downloadRepo := repositories.NewDownloadRepo(pool)
	pendingRepo := repositories.NewPendingActionRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Preference store
	prefsStore := prefs.NewStore(rdb, publisher, prefs.CacheSettings{
		MaxSizeMB:  cfg.DefaultMaxCacheSizeMB,
		MaxAgeDays: cfg.DefaultMaxCacheAgeDays,
	}, log)

	// Services
	api := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey, cfg.UpstreamTimeoutMS, log)
	auditService := services.NewAuditService(api, auditRepo, log)
	clientService := services.NewClientService(api, clientRepo, log)
	docCacheService := services.NewDocCacheService(cfg.CacheDir, documentRepo, downloadRepo, api, prefsStore, publisher, log)
	pendingService := services.NewPendingActionService(pendingRepo, publisher, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg, log)
	auditHandler := handlers.NewAuditHandler(auditService, log)
	clientHandler := handlers.NewClientHandler(clientService, log)
	cacheHandler := handlers.NewCacheHandler(docCacheService, log)
	pendingHandler := handlers.NewPendingHandler(pendingService, log)
	settingsHandler := handlers.NewSettingsHandler(prefsStore, log)
	cacheWS := handlers.NewCacheWS(cfg, docCacheService, subscriber, log)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, auditHandler, clientHandler, cacheHandler, pendingHandler, settingsHandler, cacheWS)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
