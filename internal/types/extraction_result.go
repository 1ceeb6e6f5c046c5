package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExtractedField is one field/value/confidence triple returned by the OCR
// collaborator for a document.
type ExtractedField struct {
	FieldName  string  `json:"field_name"`
	RawValue   string  `json:"raw_value"`
	Confidence float64 `json:"confidence"`
}

type ExtractionResult struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID   string         `gorm:"column:application_id;not null;index" json:"application_id"`
	DocumentID      uuid.UUID      `gorm:"type:uuid;column:document_id;not null;index" json:"document_id"`
	DocumentType    string         `gorm:"column:document_type;not null" json:"document_type"`
	ExtractedFields datatypes.JSON `gorm:"type:jsonb;column:extracted_fields" json:"extracted_fields"` // []ExtractedField
	ExtractedAt     time.Time      `gorm:"column:extracted_at;not null" json:"extracted_at"`
	CreatedAt       time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ExtractionResult) TableName() string { return "extraction_result" }
