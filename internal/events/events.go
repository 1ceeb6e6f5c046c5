package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one pipeline notification: a job transition or a stage milestone.
type Event struct {
	Type          string     `json:"type"`
	ApplicationID string     `json:"application_id"`
	DocumentID    *uuid.UUID `json:"document_id,omitempty"`
	JobID         *uuid.UUID `json:"job_id,omitempty"`
	Stage         string     `json:"stage,omitempty"`
	Status        string     `json:"status,omitempty"`
	Message       string     `json:"message,omitempty"`
	At            time.Time  `json:"at"`
}

const (
	TypeJobTransition     = "job.transition"
	TypeApplicationStatus = "application.status"
	TypeGoldenRecord      = "golden_record.created"
)

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}
