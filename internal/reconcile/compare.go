package reconcile

import (
	"fmt"

	"github.com/agext/levenshtein"

	"github.com/openlend/docpipe-backend/internal/config"
	"github.com/openlend/docpipe-backend/internal/types"
)

// Comparator decides per-source agreement against the application-form
// reference value. It is stateless and deterministic: identical
// (reference, candidate, mapping) inputs always yield the identical outcome.
type Comparator struct {
	cfg *config.Registry
}

func NewComparator(cfg *config.Registry) *Comparator {
	return &Comparator{cfg: cfg}
}

// CompareField produces one ComparisonOutcome per candidate. With no
// candidates the single outcome is missing, regardless of comparison type.
func (c *Comparator) CompareField(m config.FieldMapping, reference string, candidates []CandidateValue) []ComparisonOutcome {
	if len(candidates) == 0 {
		return []ComparisonOutcome{{
			FieldName: m.Name,
			Status:    types.ValidationStatusMissing,
			Severity:  deriveSeverity(m.Priority, types.ValidationStatusMissing),
			Note:      "no document value observed",
		}}
	}
	outcomes := make([]ComparisonOutcome, 0, len(candidates))
	for _, cand := range candidates {
		outcomes = append(outcomes, c.compareOne(m, reference, cand))
	}
	return outcomes
}

func (c *Comparator) compareOne(m config.FieldMapping, reference string, cand CandidateValue) ComparisonOutcome {
	out := ComparisonOutcome{FieldName: m.Name, Candidate: cand}

	if cand.Raw == "" {
		out.Status = types.ValidationStatusMissing
		out.Severity = deriveSeverity(m.Priority, out.Status)
		out.Note = "empty candidate value"
		return out
	}

	switch m.Compare {
	case config.CompareExactText:
		c.compareExact(m, reference, cand, &out)
	case config.CompareFuzzyText:
		c.compareFuzzy(m, reference, cand, &out)
	case config.CompareCurrency, config.CompareNumeric:
		c.compareRelative(m, reference, cand, &out)
	case config.CompareDate:
		c.compareDate(m, reference, cand, &out)
	}
	out.Severity = deriveSeverity(m.Priority, out.Status)
	return out
}

func (c *Comparator) compareExact(m config.FieldMapping, reference string, cand CandidateValue, out *ComparisonOutcome) {
	if normalizeText(reference) == normalizeText(cand.Raw) {
		out.Status = types.ValidationStatusValidated
		out.Metric = 1
		return
	}
	out.Status = types.ValidationStatusMismatch
	out.Note = "values differ after normalization"
}

func (c *Comparator) compareFuzzy(m config.FieldMapping, reference string, cand CandidateValue, out *ComparisonOutcome) {
	sim := Similarity(reference, cand.Raw)
	out.Metric = sim
	if sim >= m.Threshold {
		out.Status = types.ValidationStatusValidated
		return
	}
	out.Status = types.ValidationStatusMismatch
	out.Note = fmt.Sprintf("similarity %.2f below threshold %.2f", sim, m.Threshold)
}

func (c *Comparator) compareRelative(m config.FieldMapping, reference string, cand CandidateValue, out *ComparisonOutcome) {
	refAmt, err := parseAmount(reference)
	if err != nil {
		out.Status = types.ValidationStatusMissing
		out.Note = fmt.Sprintf("unparseable reference value: %v", err)
		return
	}
	candAmt, err := parseAmount(cand.Raw)
	if err != nil {
		out.Status = types.ValidationStatusMissing
		out.Note = fmt.Sprintf("unparseable candidate value: %v", err)
		return
	}
	diff := relativeDifference(refAmt, candAmt)
	out.Metric = diff
	if diff <= m.Tolerance {
		out.Status = types.ValidationStatusValidated
		return
	}
	out.Status = types.ValidationStatusMismatch
	out.Note = fmt.Sprintf("relative difference %.4f exceeds tolerance %.4f", diff, m.Tolerance)
}

func (c *Comparator) compareDate(m config.FieldMapping, reference string, cand CandidateValue, out *ComparisonOutcome) {
	refDate, err := normalizeDate(reference)
	if err != nil {
		out.Status = types.ValidationStatusMissing
		out.Note = fmt.Sprintf("unparseable reference date: %v", err)
		return
	}
	candDate, err := normalizeDate(cand.Raw)
	if err != nil {
		out.Status = types.ValidationStatusMissing
		out.Note = fmt.Sprintf("unparseable candidate date: %v", err)
		return
	}
	if refDate == candDate {
		out.Status = types.ValidationStatusValidated
		out.Metric = 1
		return
	}
	out.Status = types.ValidationStatusMismatch
	out.Note = fmt.Sprintf("dates differ: %s vs %s", refDate, candDate)
}

// Similarity is the normalized edit-distance ratio used for fuzzy-text
// comparison. It is symmetric and operates on normalized text.
func Similarity(a, b string) float64 {
	na, nb := normalizeText(a), normalizeText(b)
	if na == "" || nb == "" {
		return 0
	}
	return levenshtein.Similarity(na, nb, levenshtein.NewParams())
}
