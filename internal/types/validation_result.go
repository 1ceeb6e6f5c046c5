package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ValidationStatusValidated = "validated"
	ValidationStatusMismatch  = "mismatch"
	ValidationStatusMissing   = "missing"

	SeverityNone     = "none"
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// ValidationResult is the stored outcome of comparing one document value
// against the application-form reference value for one canonical field.
type ValidationResult struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID    string     `gorm:"column:application_id;not null;index" json:"application_id"`
	DocumentID       *uuid.UUID `gorm:"type:uuid;column:document_id;index" json:"document_id,omitempty"`
	DocumentType     string     `gorm:"column:document_type" json:"document_type"`
	FieldName        string     `gorm:"column:field_name;not null;index" json:"field_name"`
	ApplicationValue string     `gorm:"column:application_value" json:"application_value"`
	DocumentValue    string     `gorm:"column:document_value" json:"document_value"`
	Status           string     `gorm:"column:status;not null;index" json:"status"`
	Severity         string     `gorm:"column:severity;not null" json:"severity"`
	Metric           float64    `gorm:"column:metric" json:"metric"` // similarity ratio or relative difference
	ConfidenceScore  float64    `gorm:"column:confidence_score" json:"confidence_score"`
	FlagForReview    bool       `gorm:"column:flag_for_review;not null;default:false" json:"flag_for_review"`
	Notes            string     `gorm:"column:notes" json:"notes"`
	CreatedAt        time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ValidationResult) TableName() string { return "validation_result" }

// ValidationSummary is the per-application roll-up consumed by the API layer
// and the decision engine.
type ValidationSummary struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID    string         `gorm:"column:application_id;not null;index" json:"application_id"`
	TotalFields      int            `gorm:"column:total_fields;not null" json:"total_fields"`
	ValidatedFields  int            `gorm:"column:validated_fields;not null" json:"validated_fields"`
	MismatchedFields int            `gorm:"column:mismatched_fields;not null" json:"mismatched_fields"`
	MissingFields    int            `gorm:"column:missing_fields;not null" json:"missing_fields"`
	SeverityCounts   datatypes.JSON `gorm:"type:jsonb;column:severity_counts" json:"severity_counts"` // severity -> count
	FlagForReview    bool           `gorm:"column:flag_for_review;not null;default:false" json:"flag_for_review"`
	CreatedAt        time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ValidationSummary) TableName() string { return "validation_summary" }
