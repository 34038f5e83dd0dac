package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fieldsync/backend/internal/auth"
	"github.com/fieldsync/backend/internal/config"
	"github.com/fieldsync/backend/internal/events"
	"github.com/fieldsync/backend/internal/services"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CacheWS streams the document-cache view to a connected device: a
// stats+entries snapshot on a fixed interval while the cache screen is
// open, plus cache events (settings changes, finished downloads) as they
// happen.
type CacheWS struct {
	cfg        *config.Config
	docCache   *services.DocCacheService
	subscriber events.Subscriber
	log        *zap.Logger
}

func NewCacheWS(cfg *config.Config, docCache *services.DocCacheService, subscriber events.Subscriber, log *zap.Logger) *CacheWS {
	return &CacheWS{cfg: cfg, docCache: docCache, subscriber: subscriber, log: log}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

type cacheSnapshot struct {
	Type    string `json:"type"`
	Stats   any    `json:"stats"`
	Entries any    `json:"entries"`
}

func (h *CacheWS) HandleWS(conn *websocket.Conn) {
	tokenStr := conn.Query("token")
	if tokenStr == "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing token"}`))
		conn.Close()
		return
	}

	if _, err := auth.ParseJWT(h.cfg.JWTSecret, tokenStr); err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		conn.Close()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer conn.Close()

	// Writer goroutine owns the connection; the read loop below only
	// detects disconnects.
	msgs := make(chan []byte, 8)

	_ = h.subscriber.Subscribe(ctx, events.StreamCache, func(event events.Event) {
		data, err := json.Marshal(event)
		if err != nil {
			return
		}
		select {
		case msgs <- data:
		default:
		}
	})

	interval := h.cfg.StatsPushInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case data := <-msgs:
				if conn.WriteMessage(websocket.TextMessage, data) != nil {
					cancel()
					return
				}
			case <-ticker.C:
				if h.pushSnapshot(ctx, conn) != nil {
					cancel()
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			cancel()
			return
		}
	}
}

func (h *CacheWS) pushSnapshot(ctx context.Context, conn *websocket.Conn) error {
	stats, err := h.docCache.Stats(ctx)
	if err != nil {
		h.log.Warn("cache stats snapshot failed", zap.Error(err))
		return nil
	}
	entries, err := h.docCache.List(ctx)
	if err != nil {
		h.log.Warn("cache list snapshot failed", zap.Error(err))
		return nil
	}

	data, err := json.Marshal(cacheSnapshot{Type: "cache_snapshot", Stats: stats, Entries: entries})
	if err != nil {
		return nil
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
