package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocumentSourceApplicant   = "applicant"
	DocumentSourceCoApplicant = "co_applicant"

	DocumentStatusUploaded   = "uploaded"
	DocumentStatusProcessing = "processing"
	DocumentStatusProcessed  = "processed"
	DocumentStatusFailed     = "failed"
)

type Document struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID string    `gorm:"column:application_id;not null;index" json:"application_id"`
	DocumentType  string    `gorm:"column:document_type;not null;index" json:"document_type"`
	Source        string    `gorm:"column:source;not null" json:"source"` // applicant|co_applicant
	FileName      string    `gorm:"column:file_name" json:"file_name"`
	StorageKey    string    `gorm:"column:storage_key" json:"storage_key"`
	Status        string    `gorm:"column:status;not null;index" json:"status"` // uploaded|processing|processed|failed
	CreatedAt     time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Document) TableName() string { return "document" }
