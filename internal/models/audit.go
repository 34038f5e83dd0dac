package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID           uuid.UUID `json:"id"`
	Action       string    `json:"action"` // created/updated/deleted/approved
	ActorName    string    `json:"actor_name"`
	ActorRole    string    `json:"actor_role"` // admin/manager/foreman/crew
	ResourceType string    `json:"resource_type"`
	ResourceName string    `json:"resource_name"`
	Details      *string   `json:"details,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
