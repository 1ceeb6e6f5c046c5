package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	LogStatusStarted   = "started"
	LogStatusCompleted = "completed"
	LogStatusFailed    = "failed"
	LogStatusSkipped   = "skipped"
)

// ProcessingLog is the append-only audit trail. One entry per stage
// transition; never mutated or deleted.
type ProcessingLog struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID string         `gorm:"column:application_id;not null;index" json:"application_id"`
	DocumentID    *uuid.UUID     `gorm:"type:uuid;column:document_id;index" json:"document_id,omitempty"`
	Stage         string         `gorm:"column:stage;not null;index" json:"stage"`
	Status        string         `gorm:"column:status;not null;index" json:"status"`
	Message       string         `gorm:"column:message" json:"message"`
	ErrorDetail   datatypes.JSON `gorm:"type:jsonb;column:error_detail" json:"error_detail,omitempty"`
	DurationMS    int64          `gorm:"column:duration_ms" json:"duration_ms"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (ProcessingLog) TableName() string { return "processing_log" }
