package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldsync/backend/internal/config"
	"github.com/fieldsync/backend/internal/db"
	"github.com/fieldsync/backend/internal/events"
	"github.com/fieldsync/backend/internal/prefs"
	"github.com/fieldsync/backend/internal/repositories"
	"github.com/fieldsync/backend/internal/services"
	"github.com/fieldsync/backend/internal/upstream"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repos
	auditRepo := repositories.NewCachedAuditRepo(pool)
	clientRepo := repositories.NewCachedClientRepo(pool)
	pendingRepo := repositories.NewPendingActionRepo(pool)

	// Services
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)
	api := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey, cfg.UpstreamTimeoutMS, log)
	auditService := services.NewAuditService(api, auditRepo, log)
	clientService := services.NewClientService(api, clientRepo, log)

	scheduler := services.NewPendingScheduler(pendingRepo, api, publisher, cfg.RetryMaxAttempts, cfg.RetryBaseBackoff, log)
	refresher := services.NewCacheRefresher(auditService, clientService, log)

	prefsStore := prefs.NewStore(rdb, publisher, prefs.CacheSettings{
		MaxSizeMB:  cfg.DefaultMaxCacheSizeMB,
		MaxAgeDays: cfg.DefaultMaxCacheAgeDays,
	}, log)
	settingsCh, err := prefsStore.Watch(ctx, subscriber)
	if err != nil {
		log.Fatal("failed to watch cache settings", zap.Error(err))
	}

	// A re-queued action triggers an immediate sweep instead of waiting
	// for the next tick.
	wake := make(chan struct{}, 1)
	if err := subscriber.Subscribe(ctx, events.StreamPending, func(event events.Event) {
		if event.Type != events.EventPendingActionQueued {
			return
		}
		select {
		case wake <- struct{}{}:
		default:
		}
	}); err != nil {
		log.Fatal("failed to subscribe to pending events", zap.Error(err))
	}

	log.Info("worker started",
		zap.Duration("retry_sweep_interval", cfg.RetrySweepInterval),
		zap.Duration("refresh_interval", cfg.RefreshInterval),
	)

	retryTicker := time.NewTicker(cfg.RetrySweepInterval)
	refreshTicker := time.NewTicker(cfg.RefreshInterval)
	defer retryTicker.Stop()
	defer refreshTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-retryTicker.C:
			scheduler.Sweep(ctx)
		case <-wake:
			scheduler.Sweep(ctx)
		case <-refreshTicker.C:
			refresher.Sweep(ctx)
		case s := <-settingsCh:
			log.Info("cache settings in effect",
				zap.Int("max_size_mb", s.MaxSizeMB),
				zap.Int("max_age_days", s.MaxAgeDays),
			)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}
