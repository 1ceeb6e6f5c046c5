package reconcile

import (
	"time"

	"github.com/openlend/docpipe-backend/internal/config"
	"github.com/openlend/docpipe-backend/internal/types"
)

// SourceApplicationForm is the source id of the structured intake form. Form
// values anchor every comparison and never compete as candidates.
const SourceApplicationForm = "application_form"

// CandidateValue is one observed value for a canonical field. Immutable once
// recorded.
type CandidateValue struct {
	FieldName    string    `json:"field_name"`
	Raw          string    `json:"raw"`
	Source       string    `json:"source"` // application_form or a document id
	DocumentType string    `json:"document_type,omitempty"`
	Confidence   float64   `json:"confidence"`
	ObservedAt   time.Time `json:"observed_at"`
}

// ComparisonOutcome is the result of comparing one candidate against the
// application-form reference value.
type ComparisonOutcome struct {
	FieldName string         `json:"field_name"`
	Candidate CandidateValue `json:"candidate"`
	Status    string         `json:"status"` // validated|mismatch|missing
	Metric    float64        `json:"metric"` // similarity ratio or relative difference
	Severity  string         `json:"severity"`
	Note      string         `json:"note,omitempty"`
}

// ResolvedField is the winning value for one canonical field plus its full
// provenance. The provenance list is mandatory for audit and is never
// trimmed, even when downstream summaries discard it.
type ResolvedField struct {
	FieldName    string              `json:"field_name"`
	Value        string              `json:"value"`
	RawValue     string              `json:"raw_value"`
	Source       string              `json:"source"`
	DocumentType string              `json:"document_type,omitempty"`
	Status       string              `json:"status"`
	Severity     string              `json:"severity"`
	Confidence   float64             `json:"confidence"`
	Provenance   []ComparisonOutcome `json:"provenance"`
}

// deriveSeverity maps a field's priority class and match status onto a
// severity. Matched outcomes always carry severity none.
func deriveSeverity(priority, status string) string {
	if status == types.ValidationStatusValidated {
		return types.SeverityNone
	}
	switch priority {
	case config.PriorityCritical:
		return types.SeverityCritical
	case config.PriorityImportant:
		if status == types.ValidationStatusMismatch {
			return types.SeverityHigh
		}
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}
