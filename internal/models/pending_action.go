package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Pending action types
const (
	ActionTypeDailyLogUpdate = "daily_log_update"
)

// Pending action statuses
const (
	ActionStatusPending   = "pending"
	ActionStatusCompleted = "completed"
	ActionStatusFailed    = "failed"
)

// PendingAction is a locally queued write that failed to reach the upstream
// API and is awaiting retry by the scheduler.
type PendingAction struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	Payload       json.RawMessage `json:"payload"`
	Status        string          `json:"status"`
	RetryCount    int             `json:"retry_count"`
	LastError     *string         `json:"last_error,omitempty"`
	NextAttemptAt time.Time       `json:"next_attempt_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// DailyLogUpdatePayload is the serialized body of a queued daily-log update.
// Fields are pointers so an edit can distinguish "unchanged" from "cleared".
type DailyLogUpdatePayload struct {
	DailyLogID  string   `json:"daily_log_id"`
	ProjectID   string   `json:"project_id"`
	LogDate     string   `json:"log_date,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	Weather     *string  `json:"weather,omitempty"`
	CrewCount   *int     `json:"crew_count,omitempty"`
	HoursWorked *float64 `json:"hours_worked,omitempty"`
}
