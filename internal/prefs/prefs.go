// Package prefs stores the device-facing cache settings in redis and lets
// interested parties observe changes.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fieldsync/backend/internal/events"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyMaxSizeMB  = "prefs:cache:max_size_mb"
	keyMaxAgeDays = "prefs:cache:max_age_days"
)

// Settings bounds. A phone-sized cache larger than 100 GB or a retention
// window beyond a year is a typo, not a preference.
const (
	MaxCacheSizeMBLimit  = 100 * 1024
	MaxCacheAgeDaysLimit = 365
)

type CacheSettings struct {
	MaxSizeMB  int `json:"max_size_mb"`
	MaxAgeDays int `json:"max_age_days"`
}

// ValidateCacheSettings rejects values before anything is persisted.
func ValidateCacheSettings(s CacheSettings) error {
	if s.MaxSizeMB <= 0 {
		return errors.New("max cache size must be a positive number of MB")
	}
	if s.MaxSizeMB > MaxCacheSizeMBLimit {
		return fmt.Errorf("max cache size must not exceed %d MB", MaxCacheSizeMBLimit)
	}
	if s.MaxAgeDays <= 0 {
		return errors.New("max cache age must be a positive number of days")
	}
	if s.MaxAgeDays > MaxCacheAgeDaysLimit {
		return fmt.Errorf("max cache age must not exceed %d days", MaxCacheAgeDaysLimit)
	}
	return nil
}

// Store reads and writes the two cache settings. Defaults apply until a
// device has written its own values.
type Store struct {
	rdb       *redis.Client
	publisher events.Publisher
	defaults  CacheSettings
	log       *zap.Logger
}

func NewStore(rdb *redis.Client, publisher events.Publisher, defaults CacheSettings, log *zap.Logger) *Store {
	return &Store{rdb: rdb, publisher: publisher, defaults: defaults, log: log}
}

func (s *Store) Get(ctx context.Context) (CacheSettings, error) {
	out := s.defaults

	vals, err := s.rdb.MGet(ctx, keyMaxSizeMB, keyMaxAgeDays).Result()
	if err != nil {
		return out, err
	}

	if n, ok := asInt(vals[0]); ok {
		out.MaxSizeMB = n
	}
	if n, ok := asInt(vals[1]); ok {
		out.MaxAgeDays = n
	}
	return out, nil
}

// Set validates, persists, and announces the new settings. Nothing is
// written when validation fails.
func (s *Store) Set(ctx context.Context, settings CacheSettings) error {
	if err := ValidateCacheSettings(settings); err != nil {
		return err
	}

	if err := s.rdb.MSet(ctx,
		keyMaxSizeMB, settings.MaxSizeMB,
		keyMaxAgeDays, settings.MaxAgeDays,
	).Err(); err != nil {
		return err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.StreamCache, events.Event{
			Type: events.EventCacheSettingsChanged,
			Payload: map[string]any{
				"max_size_mb":  settings.MaxSizeMB,
				"max_age_days": settings.MaxAgeDays,
			},
		})
	}
	return nil
}

// Watch emits the current settings immediately and again after every
// change, until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, subscriber events.Subscriber) (<-chan CacheSettings, error) {
	ch := make(chan CacheSettings, 1)

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	ch <- current

	err = subscriber.Subscribe(ctx, events.StreamCache, func(event events.Event) {
		if event.Type != events.EventCacheSettingsChanged {
			return
		}
		settings, err := s.Get(ctx)
		if err != nil {
			s.log.Warn("failed to reload cache settings", zap.Error(err))
			return
		}
		select {
		case ch <- settings:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func asInt(v any) (int, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return 0, false
	}
	var n int
	if err := json.Unmarshal([]byte(s), &n); err != nil {
		return 0, false
	}
	return n, true
}
