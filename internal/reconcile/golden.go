package reconcile

import (
	"github.com/openlend/docpipe-backend/internal/config"
	"github.com/openlend/docpipe-backend/internal/types"
)

const (
	highConfidenceFloor    = 0.8
	readinessFloor         = 0.75
	formFallbackConfidence = 0.8
)

// SummaryCounts is the validation roll-up surfaced per application.
// Severity counts are taken over every comparison outcome considered, so a
// losing candidate's critical mismatch still surfaces for review.
type SummaryCounts struct {
	TotalFields      int            `json:"total_fields"`
	ValidatedFields  int            `json:"validated_fields"`
	MismatchedFields int            `json:"mismatched_fields"`
	MissingFields    int            `json:"missing_fields"`
	SeverityCounts   map[string]int `json:"severity_counts"`
	FlagForReview    bool           `json:"flag_for_review"`
}

// GoldenBuild is the in-memory golden record produced by one Builder run.
type GoldenBuild struct {
	ApplicationID          string                   `json:"application_id"`
	Fields                 map[string]ResolvedField `json:"fields"`
	TotalFields            int                      `json:"total_fields"`
	VerifiedFields         int                      `json:"verified_fields"`
	HighConfidenceFields   int                      `json:"high_confidence_fields"`
	DataQualityScore       float64                  `json:"data_quality_score"`
	ReadyForDecisionEngine bool                     `json:"ready_for_decision_engine"`
	Summary                SummaryCounts            `json:"summary"`
}

// Builder assembles the golden record for an application once every document
// has reached a terminal validation state. Build is pure and idempotent:
// the same form data and candidates always produce an identical record.
type Builder struct {
	cfg *config.Registry
	cmp *Comparator
	res *Resolver
}

func NewBuilder(cfg *config.Registry) *Builder {
	return &Builder{cfg: cfg, cmp: NewComparator(cfg), res: NewResolver()}
}

// Build reconciles every mapped field. form is keyed by the mapping's form
// field; candidates are grouped by canonical field name.
func (b *Builder) Build(applicationID string, form map[string]string, candidates map[string][]CandidateValue) GoldenBuild {
	mappings := b.cfg.Mappings()
	out := GoldenBuild{
		ApplicationID: applicationID,
		Fields:        make(map[string]ResolvedField, len(mappings)),
		TotalFields:   len(mappings),
		Summary: SummaryCounts{
			TotalFields:    len(mappings),
			SeverityCounts: map[string]int{},
		},
	}

	var confidenceSum float64
	criticalField := false

	for _, m := range mappings {
		reference := form[m.FormField]
		outcomes := b.cmp.CompareField(m, reference, candidates[m.Name])
		resolved := b.resolveField(m, reference, outcomes)
		out.Fields[m.Name] = resolved

		switch resolved.Status {
		case types.ValidationStatusValidated:
			out.VerifiedFields++
			out.Summary.ValidatedFields++
		case types.ValidationStatusMismatch:
			out.Summary.MismatchedFields++
		case types.ValidationStatusMissing:
			out.Summary.MissingFields++
		}
		if resolved.Confidence >= highConfidenceFloor {
			out.HighConfidenceFields++
		}
		if resolved.Severity == types.SeverityCritical {
			criticalField = true
		}
		for _, o := range outcomes {
			if o.Severity != types.SeverityNone {
				out.Summary.SeverityCounts[o.Severity]++
			}
			if o.Severity == types.SeverityCritical {
				out.Summary.FlagForReview = true
			}
		}
		confidenceSum += resolved.Confidence
	}

	if out.TotalFields > 0 {
		verifiedRatio := float64(out.VerifiedFields) / float64(out.TotalFields)
		avgConfidence := confidenceSum / float64(out.TotalFields)
		out.DataQualityScore = clamp01(0.6*verifiedRatio + 0.4*avgConfidence)
	}
	out.ReadyForDecisionEngine = out.DataQualityScore >= readinessFloor && !criticalField
	return out
}

// resolveField turns comparison outcomes into the field's resolution. With
// zero usable document values the form value stands in as a missing-status
// placeholder; with one or more the resolver's selection applies (for a
// single source that is exactly the comparator's own outcome).
func (b *Builder) resolveField(m config.FieldMapping, reference string, outcomes []ComparisonOutcome) ResolvedField {
	usable := 0
	for _, o := range outcomes {
		if o.Status != types.ValidationStatusMissing {
			usable++
		}
	}
	if usable == 0 {
		placeholder := ResolvedField{
			FieldName:  m.Name,
			Status:     types.ValidationStatusMissing,
			Severity:   deriveSeverity(m.Priority, types.ValidationStatusMissing),
			Provenance: outcomes,
		}
		if reference != "" {
			placeholder.Value = FormatValue(m, reference)
			placeholder.RawValue = reference
			placeholder.Source = SourceApplicationForm
			placeholder.Confidence = formFallbackConfidence
		}
		return placeholder
	}
	return b.res.Resolve(m, outcomes)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
