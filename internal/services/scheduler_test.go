package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fieldsync/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeRetryQueue struct {
	due       []models.PendingAction
	completed []uuid.UUID
	failed    map[uuid.UUID]string
}

func (f *fakeRetryQueue) ListDue(context.Context, int, int) ([]models.PendingAction, error) {
	return f.due, nil
}

func (f *fakeRetryQueue) MarkCompleted(_ context.Context, id uuid.UUID) error {
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeRetryQueue) MarkAttemptFailed(_ context.Context, id uuid.UUID, errMsg string, _ time.Time, _ int) error {
	if f.failed == nil {
		f.failed = map[uuid.UUID]string{}
	}
	f.failed[id] = errMsg
	return nil
}

type fakeSubmitter struct {
	err       error
	submitted []models.DailyLogUpdatePayload
}

func (f *fakeSubmitter) UpdateDailyLog(_ context.Context, p models.DailyLogUpdatePayload) error {
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, p)
	return nil
}

func TestSweepSubmitsAndCompletes(t *testing.T) {
	id := uuid.New()
	queue := &fakeRetryQueue{due: []models.PendingAction{{
		ID:      id,
		Type:    models.ActionTypeDailyLogUpdate,
		Payload: []byte(`{"daily_log_id":"dl-1","project_id":"p-1"}`),
		Status:  models.ActionStatusPending,
	}}}
	submitter := &fakeSubmitter{}
	s := NewPendingScheduler(queue, submitter, nil, 5, time.Second, zap.NewNop())

	s.Sweep(context.Background())

	if len(submitter.submitted) != 1 || submitter.submitted[0].DailyLogID != "dl-1" {
		t.Errorf("submitted = %v", submitter.submitted)
	}
	if len(queue.completed) != 1 || queue.completed[0] != id {
		t.Errorf("completed = %v", queue.completed)
	}
}

func TestSweepRecordsFailure(t *testing.T) {
	id := uuid.New()
	queue := &fakeRetryQueue{due: []models.PendingAction{{
		ID:      id,
		Type:    models.ActionTypeDailyLogUpdate,
		Payload: []byte(`{"daily_log_id":"dl-1"}`),
	}}}
	s := NewPendingScheduler(queue, &fakeSubmitter{err: errors.New("HTTP 502")}, nil, 5, time.Second, zap.NewNop())

	s.Sweep(context.Background())

	if len(queue.completed) != 0 {
		t.Error("failed action marked completed")
	}
	if queue.failed[id] != "HTTP 502" {
		t.Errorf("failure message = %q", queue.failed[id])
	}
}

func TestSweepUnknownTypeFails(t *testing.T) {
	id := uuid.New()
	queue := &fakeRetryQueue{due: []models.PendingAction{{
		ID:      id,
		Type:    "timesheet_upload",
		Payload: []byte(`{}`),
	}}}
	s := NewPendingScheduler(queue, &fakeSubmitter{}, nil, 5, time.Second, zap.NewNop())

	s.Sweep(context.Background())

	if _, ok := queue.failed[id]; !ok {
		t.Error("unknown action type not recorded as failure")
	}
}

func TestBackoffDelay(t *testing.T) {
	base := 30 * time.Second
	tests := []struct {
		retryCount int
		expected   time.Duration
	}{
		{0, 30 * time.Second},
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{10, time.Hour},
		{30, time.Hour},
	}

	for _, tt := range tests {
		if got := BackoffDelay(base, tt.retryCount); got != tt.expected {
			t.Errorf("BackoffDelay(%v, %d) = %v, want %v", base, tt.retryCount, got, tt.expected)
		}
	}
}
