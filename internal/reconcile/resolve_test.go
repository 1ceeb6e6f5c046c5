package reconcile

import (
	"testing"
	"time"

	"github.com/openlend/docpipe-backend/internal/config"
	"github.com/openlend/docpipe-backend/internal/types"
)

func outcome(field, raw, docType string, confidence float64, status string, observed time.Time) ComparisonOutcome {
	return ComparisonOutcome{
		FieldName: field,
		Status:    status,
		Candidate: CandidateValue{
			FieldName:    field,
			Raw:          raw,
			Source:       "doc-" + docType,
			DocumentType: docType,
			Confidence:   confidence,
			ObservedAt:   observed,
		},
	}
}

func TestResolvePrefersConfidenceThenSourceOrder(t *testing.T) {
	// Three documents disagree on employer_name. Two share the top
	// confidence; the employment letter outranks the bank statement in the
	// source-preference order, so the timestamp tie-break is never reached.
	m := config.FieldMapping{
		Name:             "employer_name",
		FormField:        "EMPLOYER_NAME",
		Compare:          config.CompareFuzzyText,
		Priority:         config.PriorityImportant,
		SourcePreference: []string{"employment_letter", "bank_statement"},
	}
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	outcomes := []ComparisonOutcome{
		outcome("employer_name", "Acme Holdings", "bank_statement", 0.6, types.ValidationStatusMismatch, at.Add(3*time.Hour)),
		outcome("employer_name", "Acme Corporation", "employment_letter", 0.9, types.ValidationStatusMismatch, at),
		outcome("employer_name", "Acme Ltd", "bank_statement", 0.9, types.ValidationStatusMismatch, at.Add(2*time.Hour)),
	}

	got := NewResolver().Resolve(m, outcomes)
	if got.RawValue != "Acme Corporation" {
		t.Fatalf("winner=%q, want employment letter value", got.RawValue)
	}
	if got.DocumentType != "employment_letter" {
		t.Fatalf("winning source=%s, want employment_letter", got.DocumentType)
	}
	if len(got.Provenance) != len(outcomes) {
		t.Fatalf("provenance count=%d, want %d", len(got.Provenance), len(outcomes))
	}
}

func TestResolveDiscardsMismatchesWhenMatchExists(t *testing.T) {
	m := config.FieldMapping{
		Name:      "annual_income",
		FormField: "ANNUAL_INCOME",
		Compare:   config.CompareCurrency,
		Priority:  config.PriorityCritical,
	}
	at := time.Now().UTC()
	outcomes := []ComparisonOutcome{
		outcome("annual_income", "91000", "bank_statement", 0.95, types.ValidationStatusMismatch, at),
		outcome("annual_income", "75800", "employment_letter", 0.7, types.ValidationStatusValidated, at),
	}

	got := NewResolver().Resolve(m, outcomes)
	if got.RawValue != "75800" {
		t.Fatalf("winner=%q, want the matched candidate despite lower confidence", got.RawValue)
	}
	if got.Status != types.ValidationStatusValidated {
		t.Fatalf("status=%s, want validated", got.Status)
	}
}

func TestResolveAllMismatchStillResolves(t *testing.T) {
	// Never resolve to an empty set when any data exists.
	m := config.FieldMapping{
		Name:      "employer_name",
		FormField: "EMPLOYER_NAME",
		Compare:   config.CompareFuzzyText,
		Priority:  config.PriorityImportant,
	}
	at := time.Now().UTC()
	outcomes := []ComparisonOutcome{
		outcome("employer_name", "Globex", "bank_statement", 0.8, types.ValidationStatusMismatch, at),
		outcome("employer_name", "Initech", "employment_letter", 0.4, types.ValidationStatusMismatch, at),
	}

	got := NewResolver().Resolve(m, outcomes)
	if got.RawValue != "Globex" {
		t.Fatalf("winner=%q, want highest-confidence mismatch", got.RawValue)
	}
	if got.Confidence > 0.5 {
		t.Fatalf("confidence=%v, mismatched winner must not exceed 0.5", got.Confidence)
	}
	if len(got.Provenance) != 2 {
		t.Fatalf("provenance count=%d, want 2", len(got.Provenance))
	}
}

func TestResolveTimestampTieBreak(t *testing.T) {
	m := config.FieldMapping{
		Name:      "ending_balance",
		FormField: "ENDING_BALANCE",
		Compare:   config.CompareCurrency,
		Priority:  config.PriorityOptional,
	}
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	outcomes := []ComparisonOutcome{
		outcome("ending_balance", "5100", "bank_statement", 0.9, types.ValidationStatusValidated, at),
		outcome("ending_balance", "5150", "bank_statement", 0.9, types.ValidationStatusValidated, at.Add(time.Hour)),
	}

	got := NewResolver().Resolve(m, outcomes)
	if got.RawValue != "5150" {
		t.Fatalf("winner=%q, want the most recent candidate", got.RawValue)
	}
}

func TestResolveWinnerAlwaysFromInput(t *testing.T) {
	m := config.FieldMapping{
		Name:      "employer_name",
		FormField: "EMPLOYER_NAME",
		Compare:   config.CompareFuzzyText,
		Priority:  config.PriorityOptional,
	}
	at := time.Now().UTC()
	outcomes := []ComparisonOutcome{
		outcome("employer_name", "Hooli", "bank_statement", 0.3, types.ValidationStatusMismatch, at),
	}
	got := NewResolver().Resolve(m, outcomes)

	found := false
	for _, o := range outcomes {
		if o.Candidate.Raw == got.RawValue {
			found = true
		}
	}
	if !found {
		t.Fatalf("resolved value %q not among input candidates", got.RawValue)
	}
}
