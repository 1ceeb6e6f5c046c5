package reconcile

import (
	"sort"

	"github.com/openlend/docpipe-backend/internal/config"
	"github.com/openlend/docpipe-backend/internal/types"
)

// Resolver selects a single winning value when more than one document
// supplied a non-missing candidate for a field. The application-form value
// anchors comparison and is never itself a competing candidate.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve picks a winner among the given outcomes:
//
//  1. mismatched candidates are discarded unless every candidate mismatches,
//  2. highest source confidence wins,
//  3. ties break on the field's source-preference order (unlisted last),
//  4. remaining ties break on the most recent observation.
//
// The returned provenance always carries every input outcome.
func (r *Resolver) Resolve(m config.FieldMapping, outcomes []ComparisonOutcome) ResolvedField {
	provenance := make([]ComparisonOutcome, len(outcomes))
	copy(provenance, outcomes)

	eligible := make([]ComparisonOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Status != types.ValidationStatusMissing {
			eligible = append(eligible, o)
		}
	}

	matched := make([]ComparisonOutcome, 0, len(eligible))
	for _, o := range eligible {
		if o.Status == types.ValidationStatusValidated {
			matched = append(matched, o)
		}
	}
	pool := matched
	if len(pool) == 0 {
		// Never resolve to an empty set when any data exists.
		pool = eligible
	}
	if len(pool) == 0 {
		return ResolvedField{
			FieldName:  m.Name,
			Status:     types.ValidationStatusMissing,
			Severity:   deriveSeverity(m.Priority, types.ValidationStatusMissing),
			Provenance: provenance,
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.Candidate.Confidence != b.Candidate.Confidence {
			return a.Candidate.Confidence > b.Candidate.Confidence
		}
		ra, rb := m.SourceRank(a.Candidate.DocumentType), m.SourceRank(b.Candidate.DocumentType)
		if ra != rb {
			return ra < rb
		}
		return a.Candidate.ObservedAt.After(b.Candidate.ObservedAt)
	})
	winner := pool[0]

	confidence := winner.Candidate.Confidence
	if winner.Status == types.ValidationStatusMismatch && confidence > 0.5 {
		// A winner that disagrees with the form is never high confidence.
		confidence = 0.5
	}

	return ResolvedField{
		FieldName:    m.Name,
		Value:        FormatValue(m, winner.Candidate.Raw),
		RawValue:     winner.Candidate.Raw,
		Source:       winner.Candidate.Source,
		DocumentType: winner.Candidate.DocumentType,
		Status:       winner.Status,
		Severity:     winner.Severity,
		Confidence:   confidence,
		Provenance:   provenance,
	}
}
