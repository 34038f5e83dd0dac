package models

import (
	"time"

	"github.com/google/uuid"
)

// Download statuses
const (
	DownloadStatusPending    = "pending"
	DownloadStatusInProgress = "in_progress"
	DownloadStatusCompleted  = "completed"
	DownloadStatusFailed     = "failed"
)

// ValidDownloadTransitions maps a download status to the statuses it may move to.
var ValidDownloadTransitions = map[string][]string{
	DownloadStatusPending:    {DownloadStatusInProgress, DownloadStatusFailed},
	DownloadStatusInProgress: {DownloadStatusCompleted, DownloadStatusFailed},
	DownloadStatusCompleted:  {},
	DownloadStatusFailed:     {},
}

func IsValidDownloadTransition(from, to string) bool {
	allowed, ok := ValidDownloadTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

type DownloadEntry struct {
	ID         uuid.UUID  `json:"id"`
	FileID     string     `json:"file_id"`
	FileName   string     `json:"file_name"`
	Status     string     `json:"status"`
	Progress   int        `json:"progress"` // 0-100
	Error      *string    `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
