package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ApplicationStatusReceived   = "received"
	ApplicationStatusProcessing = "processing"
	ApplicationStatusCompleted  = "completed"
	ApplicationStatusFailed     = "failed"
)

type Application struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID        string         `gorm:"column:application_id;uniqueIndex;not null" json:"application_id"`
	ApplicantName        string         `gorm:"column:applicant_name" json:"applicant_name"`
	Status               string         `gorm:"column:status;not null;index" json:"status"` // received|processing|completed|failed
	StatusMessage        string         `gorm:"column:status_message" json:"status_message"`
	CompletionPercentage float64        `gorm:"column:completion_percentage;not null;default:0" json:"completion_percentage"`
	FormFields           datatypes.JSON `gorm:"type:jsonb;column:form_fields" json:"form_fields"` // canonical field name -> raw form value
	CreatedAt            time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Application) TableName() string { return "application" }
