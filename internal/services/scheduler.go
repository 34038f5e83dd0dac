package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fieldsync/backend/internal/events"
	"github.com/fieldsync/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type dailyLogSubmitter interface {
	UpdateDailyLog(ctx context.Context, payload models.DailyLogUpdatePayload) error
}

type retryQueue interface {
	ListDue(ctx context.Context, maxRetries int, limit int) ([]models.PendingAction, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkAttemptFailed(ctx context.Context, id uuid.UUID, errMsg string, nextAttemptAt time.Time, maxRetries int) error
}

// PendingScheduler drains the pending-action queue against the upstream
// API. It runs in the worker on a ticker and is woken early when a device
// re-queues an edited action.
type PendingScheduler struct {
	queue       retryQueue
	upstream    dailyLogSubmitter
	publisher   events.Publisher
	maxRetries  int
	baseBackoff time.Duration
	log         *zap.Logger
}

func NewPendingScheduler(
	queue retryQueue,
	upstream dailyLogSubmitter,
	publisher events.Publisher,
	maxRetries int,
	baseBackoff time.Duration,
	log *zap.Logger,
) *PendingScheduler {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	if baseBackoff <= 0 {
		baseBackoff = 30 * time.Second
	}
	return &PendingScheduler{
		queue:       queue,
		upstream:    upstream,
		publisher:   publisher,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
		log:         log,
	}
}

// Sweep submits every due pending action once.
func (s *PendingScheduler) Sweep(ctx context.Context) {
	actions, err := s.queue.ListDue(ctx, s.maxRetries, 50)
	if err != nil {
		s.log.Error("failed to list due actions", zap.Error(err))
		return
	}

	for _, action := range actions {
		if err := s.submit(ctx, action); err != nil {
			s.fail(ctx, action, err)
			continue
		}

		if err := s.queue.MarkCompleted(ctx, action.ID); err != nil {
			s.log.Error("failed to mark action completed",
				zap.String("action_id", action.ID.String()), zap.Error(err))
			continue
		}
		s.log.Info("pending action submitted", zap.String("action_id", action.ID.String()))
	}
}

func (s *PendingScheduler) submit(ctx context.Context, action models.PendingAction) error {
	switch action.Type {
	case models.ActionTypeDailyLogUpdate:
		var payload models.DailyLogUpdatePayload
		if err := json.Unmarshal(action.Payload, &payload); err != nil {
			return err
		}
		return s.upstream.UpdateDailyLog(ctx, payload)
	default:
		return errUnknownActionType(action.Type)
	}
}

func (s *PendingScheduler) fail(ctx context.Context, action models.PendingAction, cause error) {
	next := time.Now().Add(BackoffDelay(s.baseBackoff, action.RetryCount))
	if err := s.queue.MarkAttemptFailed(ctx, action.ID, cause.Error(), next, s.maxRetries); err != nil {
		s.log.Error("failed to record attempt failure",
			zap.String("action_id", action.ID.String()), zap.Error(err))
		return
	}

	s.log.Warn("pending action attempt failed",
		zap.String("action_id", action.ID.String()),
		zap.Int("retry_count", action.RetryCount+1),
		zap.Error(cause),
	)

	if action.RetryCount+1 >= s.maxRetries && s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.StreamPending, events.Event{
			Type:    events.EventPendingActionFailed,
			Payload: map[string]any{"action_id": action.ID.String(), "error": cause.Error()},
		})
	}
}

// BackoffDelay doubles the base delay per completed attempt, capped at an
// hour so an action edited overnight is retried promptly.
func BackoffDelay(base time.Duration, retryCount int) time.Duration {
	const maxDelay = time.Hour
	d := base
	for i := 0; i < retryCount; i++ {
		d *= 2
		if d >= maxDelay {
			return maxDelay
		}
	}
	return d
}

type errUnknownActionType string

func (e errUnknownActionType) Error() string {
	return "unknown action type: " + string(e)
}
