// cachectl is an operator tool for the document cache: inspect, purge
// expired entries, or wipe it without going through the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fieldsync/backend/internal/config"
	"github.com/fieldsync/backend/internal/db"
	"github.com/fieldsync/backend/internal/prefs"
	"github.com/fieldsync/backend/internal/repositories"
	"github.com/fieldsync/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	var (
		purge = flag.Bool("purge-expired", false, "remove entries older than the configured max age")
		clear = flag.Bool("clear", false, "remove every cached document")
	)
	flag.Parse()

	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx := context.Background()

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

	documentRepo := repositories.NewDocumentRepo(pool)
	downloadRepo := repositories.NewDownloadRepo(pool)
	prefsStore := prefs.NewStore(rdb, nil, prefs.CacheSettings{
		MaxSizeMB:  cfg.DefaultMaxCacheSizeMB,
		MaxAgeDays: cfg.DefaultMaxCacheAgeDays,
	}, log)

	docCache := services.NewDocCacheService(cfg.CacheDir, documentRepo, downloadRepo, nil, prefsStore, nil, log)

	switch {
	case *purge:
		removed, err := docCache.PurgeExpired(ctx)
		if err != nil {
			log.Fatal("purge failed", zap.Error(err))
		}
		fmt.Printf("removed %d expired entries\n", removed)
	case *clear:
		removed, err := docCache.ClearAll(ctx)
		if err != nil {
			log.Fatal("clear failed", zap.Error(err))
		}
		fmt.Printf("removed %d entries\n", removed)
	default:
		stats, err := docCache.Stats(ctx)
		if err != nil {
			log.Fatal("stats failed", zap.Error(err))
		}
		settings, err := prefsStore.Get(ctx)
		if err != nil {
			log.Fatal("settings read failed", zap.Error(err))
		}
		fmt.Printf("entries: %d\n", stats.EntryCount)
		fmt.Printf("size:    %.1f MB\n", float64(stats.TotalSizeBytes)/(1024*1024))
		fmt.Printf("limits:  %d MB / %d days\n", settings.MaxSizeMB, settings.MaxAgeDays)
		os.Exit(0)
	}
}
