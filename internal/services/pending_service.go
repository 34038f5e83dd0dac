package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fieldsync/backend/internal/events"
	"github.com/fieldsync/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrActionNotFound covers missing rows, type-tag mismatches, and unreadable
// payloads alike: the edit screen treats them all as "not found".
var ErrActionNotFound = errors.New("pending action not found")

type actionStore interface {
	Insert(ctx context.Context, a *models.PendingAction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PendingAction, error)
	ListByStatus(ctx context.Context, status string) ([]models.PendingAction, error)
	ResetForRetry(ctx context.Context, id uuid.UUID, payload json.RawMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DailyLogEdits carries the fields a user may change on the retry form.
// Nil means "leave the stored value alone".
type DailyLogEdits struct {
	Notes       *string  `json:"notes,omitempty"`
	Weather     *string  `json:"weather,omitempty"`
	CrewCount   *int     `json:"crew_count,omitempty"`
	HoursWorked *float64 `json:"hours_worked,omitempty"`
}

// DecodeDailyLogPayload deserializes a stored payload. Unknown fields are
// tolerated; malformed JSON is reported as a not-found condition rather
// than an internal error.
func DecodeDailyLogPayload(raw json.RawMessage) (models.DailyLogUpdatePayload, error) {
	var p models.DailyLogUpdatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.DailyLogUpdatePayload{}, fmt.Errorf("%w: unreadable payload", ErrActionNotFound)
	}
	return p, nil
}

// MergeDailyLogEdits applies edited field values onto the stored payload.
func MergeDailyLogEdits(p models.DailyLogUpdatePayload, edits DailyLogEdits) models.DailyLogUpdatePayload {
	if edits.Notes != nil {
		p.Notes = edits.Notes
	}
	if edits.Weather != nil {
		p.Weather = edits.Weather
	}
	if edits.CrewCount != nil {
		p.CrewCount = edits.CrewCount
	}
	if edits.HoursWorked != nil {
		p.HoursWorked = edits.HoursWorked
	}
	return p
}

type PendingActionService struct {
	store     actionStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewPendingActionService(store actionStore, publisher events.Publisher, log *zap.Logger) *PendingActionService {
	return &PendingActionService{store: store, publisher: publisher, log: log}
}

func (s *PendingActionService) List(ctx context.Context, status string) ([]models.PendingAction, error) {
	return s.store.ListByStatus(ctx, status)
}

// QueueDailyLogUpdate stores a new daily-log update for background
// submission and wakes the scheduler.
func (s *PendingActionService) QueueDailyLogUpdate(ctx context.Context, payload models.DailyLogUpdatePayload) (*models.PendingAction, error) {
	if payload.DailyLogID == "" || payload.ProjectID == "" {
		return nil, fmt.Errorf("daily_log_id and project_id are required")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	action := &models.PendingAction{
		Type:          models.ActionTypeDailyLogUpdate,
		Payload:       data,
		Status:        models.ActionStatusPending,
		NextAttemptAt: time.Now(),
	}
	if err := s.store.Insert(ctx, action); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.StreamPending, events.Event{
			Type:    events.EventPendingActionQueued,
			Payload: map[string]any{"action_id": action.ID.String()},
		})
	}

	s.log.Info("pending action queued", zap.String("action_id", action.ID.String()))
	return action, nil
}

// Discard drops a queued action the user no longer wants submitted.
func (s *PendingActionService) Discard(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return ErrActionNotFound
	}
	return s.store.Delete(ctx, id)
}

// GetDailyLogUpdate loads a queued daily-log update for editing. An action
// of any other type, or one whose payload cannot be read, reports not found.
func (s *PendingActionService) GetDailyLogUpdate(ctx context.Context, id uuid.UUID) (*models.PendingAction, models.DailyLogUpdatePayload, error) {
	action, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, models.DailyLogUpdatePayload{}, ErrActionNotFound
	}
	if action.Type != models.ActionTypeDailyLogUpdate {
		return nil, models.DailyLogUpdatePayload{}, ErrActionNotFound
	}

	payload, err := DecodeDailyLogPayload(action.Payload)
	if err != nil {
		return nil, models.DailyLogUpdatePayload{}, err
	}
	return action, payload, nil
}

// RetryDailyLogUpdate merges the edits into the stored payload, resets the
// action to pending with a clean retry state, and wakes the scheduler.
func (s *PendingActionService) RetryDailyLogUpdate(ctx context.Context, id uuid.UUID, edits DailyLogEdits) error {
	action, payload, err := s.GetDailyLogUpdate(ctx, id)
	if err != nil {
		return err
	}

	merged := MergeDailyLogEdits(payload, edits)
	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}

	if err := s.store.ResetForRetry(ctx, action.ID, data); err != nil {
		return err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.StreamPending, events.Event{
			Type:    events.EventPendingActionQueued,
			Payload: map[string]any{"action_id": action.ID.String()},
		})
	}

	s.log.Info("pending action re-queued", zap.String("action_id", action.ID.String()))
	return nil
}
