package events

import "context"

// Streams
const (
	StreamCache   = "events:cache"
	StreamPending = "events:pending"
)

// Event types
const (
	EventCacheSettingsChanged = "cache_settings_changed"
	EventDownloadFinished     = "download_finished"
	EventPendingActionQueued  = "pending_action_queued"
	EventPendingActionFailed  = "pending_action_failed"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
