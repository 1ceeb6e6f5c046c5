package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	JobTypeIngestion  = "ingestion"
	JobTypeExtraction = "extraction"
	JobTypeValidation = "validation"
	JobTypeFormatting = "formatting"

	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// ProcessingJob is one stage of the pipeline for an (application, document)
// pair. DocumentID is nil for application-level stages (formatting).
type ProcessingJob struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID string         `gorm:"column:application_id;not null;index" json:"application_id"`
	DocumentID    *uuid.UUID     `gorm:"type:uuid;column:document_id;index" json:"document_id,omitempty"`
	JobType       string         `gorm:"column:job_type;not null;index" json:"job_type"`
	Status        string         `gorm:"column:status;not null;index" json:"status"`
	Priority      int            `gorm:"column:priority;not null;default:5" json:"priority"` // lower runs first
	RetryCount    int            `gorm:"column:retry_count;not null;default:0" json:"retry_count"`
	MaxRetries    int            `gorm:"column:max_retries;not null;default:3" json:"max_retries"`
	LastError     string         `gorm:"column:last_error" json:"last_error"`
	Payload       datatypes.JSON `gorm:"type:jsonb;column:payload" json:"payload"`
	NotBefore     *time.Time     `gorm:"column:not_before;index" json:"not_before,omitempty"` // retry backoff gate
	LockedAt      *time.Time     `gorm:"column:locked_at;index" json:"locked_at,omitempty"`
	StartedAt     *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt   *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (ProcessingJob) TableName() string { return "processing_job" }

func (j *ProcessingJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

func (j *ProcessingJob) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}
