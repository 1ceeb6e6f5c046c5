package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GoldenRecord is the single reconciled record for an application. Rebuilds
// insert a new version; prior versions are superseded, never mutated.
type GoldenRecord struct {
	ID                     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID          string         `gorm:"column:application_id;not null;index" json:"application_id"`
	Version                int            `gorm:"column:version;not null;default:1" json:"version"`
	Fields                 datatypes.JSON `gorm:"type:jsonb;column:fields" json:"fields"` // canonical field name -> resolved field
	TotalFields            int            `gorm:"column:total_fields;not null" json:"total_fields"`
	VerifiedFields         int            `gorm:"column:verified_fields;not null" json:"verified_fields"`
	HighConfidenceFields   int            `gorm:"column:high_confidence_fields;not null" json:"high_confidence_fields"`
	DataQualityScore       float64        `gorm:"column:data_quality_score;not null" json:"data_quality_score"`
	ReadyForDecisionEngine bool           `gorm:"column:ready_for_decision_engine;not null;default:false" json:"ready_for_decision_engine"`
	CreatedAt              time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (GoldenRecord) TableName() string { return "golden_record" }
