package models

import (
	"time"

	"github.com/google/uuid"
)

// Client statuses
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
	ClientStatusArchived = "archived"
)

type Client struct {
	ID           uuid.UUID `json:"id"`
	CompanyName  string    `json:"company_name"`
	ContactName  *string   `json:"contact_name,omitempty"`
	ContactEmail *string   `json:"contact_email,omitempty"`
	ContactPhone *string   `json:"contact_phone,omitempty"`
	Address      *string   `json:"address,omitempty"`
	City         *string   `json:"city,omitempty"`
	State        *string   `json:"state,omitempty"`
	Zip          *string   `json:"zip,omitempty"`
	Status       string    `json:"status"`
	ProjectCount int       `json:"project_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func IsValidClientStatus(s string) bool {
	switch s {
	case ClientStatusActive, ClientStatusInactive, ClientStatusArchived:
		return true
	}
	return false
}
