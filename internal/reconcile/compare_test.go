package reconcile

import (
	"reflect"
	"testing"
	"time"

	"github.com/openlend/docpipe-backend/internal/config"
	"github.com/openlend/docpipe-backend/internal/types"
)

func testRegistry(t *testing.T, mappings ...config.FieldMapping) *config.Registry {
	t.Helper()
	reg, err := config.NewRegistry(mappings)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func candidate(field, raw, docType string, confidence float64) CandidateValue {
	return CandidateValue{
		FieldName:    field,
		Raw:          raw,
		Source:       "doc-" + docType,
		DocumentType: docType,
		Confidence:   confidence,
		ObservedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCompareCurrencyWithinTolerance(t *testing.T) {
	// Form income 75000 vs document gross income 76500 at 5% tolerance.
	m := config.FieldMapping{
		Name:      "annual_income",
		FormField: "ANNUAL_INCOME",
		Compare:   config.CompareCurrency,
		Tolerance: 0.05,
		Priority:  config.PriorityImportant,
	}
	reg := testRegistry(t, m)
	cmp := NewComparator(reg)

	outcomes := cmp.CompareField(m, "75000", []CandidateValue{candidate("annual_income", "$76,500.00", "employment_letter", 0.92)})
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	got := outcomes[0]
	if got.Status != types.ValidationStatusValidated {
		t.Fatalf("status=%s, want validated (metric=%v, note=%s)", got.Status, got.Metric, got.Note)
	}
	if got.Metric < 0.019 || got.Metric > 0.020 {
		t.Fatalf("relative difference=%v, want ~0.0196", got.Metric)
	}
	if got.Severity != types.SeverityNone {
		t.Fatalf("severity=%s, want none", got.Severity)
	}
}

func TestCompareRelativeBoundary(t *testing.T) {
	m := config.FieldMapping{
		Name:      "credit_score",
		FormField: "CREDIT_SCORE",
		Compare:   config.CompareNumeric,
		Tolerance: 0.05,
		Priority:  config.PriorityImportant,
	}
	cmp := NewComparator(testRegistry(t, m))

	cases := []struct {
		name string
		ref  string
		doc  string
		want string
	}{
		{name: "exactly_at_tolerance_matches", ref: "100", doc: "95", want: types.ValidationStatusValidated},
		{name: "epsilon_above_mismatches", ref: "100", doc: "94.9", want: types.ValidationStatusMismatch},
		{name: "identical_matches", ref: "720", doc: "720", want: types.ValidationStatusValidated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cmp.CompareField(m, tc.ref, []CandidateValue{candidate(m.Name, tc.doc, "credit_report", 0.9)})[0]
			if got.Status != tc.want {
				t.Fatalf("ref=%s doc=%s: status=%s, want %s (metric=%v)", tc.ref, tc.doc, got.Status, tc.want, got.Metric)
			}
		})
	}
}

func TestCompareFuzzyNameMismatchIsCritical(t *testing.T) {
	// "John" vs "Jonathan" falls short of the 0.80 threshold on a critical
	// field, so the outcome is a critical mismatch.
	m := config.FieldMapping{
		Name:      "applicant_first_name",
		FormField: "APPLICANT_FIRST_NAME",
		Compare:   config.CompareFuzzyText,
		Threshold: 0.80,
		Priority:  config.PriorityCritical,
	}
	cmp := NewComparator(testRegistry(t, m))

	got := cmp.CompareField(m, "John", []CandidateValue{candidate(m.Name, "Jonathan", "employment_letter", 0.88)})[0]
	if got.Status != types.ValidationStatusMismatch {
		t.Fatalf("status=%s, want mismatch (metric=%v)", got.Status, got.Metric)
	}
	if got.Severity != types.SeverityCritical {
		t.Fatalf("severity=%s, want critical", got.Severity)
	}
	if got.Metric >= 0.80 {
		t.Fatalf("similarity=%v, expected below threshold", got.Metric)
	}
}

func TestCompareNoCandidatesIsMissing(t *testing.T) {
	cases := []struct {
		priority string
		want     string
	}{
		{priority: config.PriorityCritical, want: types.SeverityCritical},
		{priority: config.PriorityImportant, want: types.SeverityMedium},
		{priority: config.PriorityOptional, want: types.SeverityLow},
	}
	for _, tc := range cases {
		t.Run(tc.priority, func(t *testing.T) {
			m := config.FieldMapping{
				Name:      "employer_name",
				FormField: "EMPLOYER_NAME",
				Compare:   config.CompareFuzzyText,
				Priority:  tc.priority,
			}
			got := NewComparator(testRegistry(t, m)).CompareField(m, "Acme Corp", nil)
			if len(got) != 1 {
				t.Fatalf("expected single missing outcome, got %d", len(got))
			}
			if got[0].Status != types.ValidationStatusMissing {
				t.Fatalf("status=%s, want missing", got[0].Status)
			}
			if got[0].Severity != tc.want {
				t.Fatalf("severity=%s, want %s", got[0].Severity, tc.want)
			}
		})
	}
}

func TestCompareDateNormalization(t *testing.T) {
	m := config.FieldMapping{
		Name:      "applicant_dob",
		FormField: "APPLICANT_DOB",
		Compare:   config.CompareDate,
		Priority:  config.PriorityCritical,
	}
	cmp := NewComparator(testRegistry(t, m))

	cases := []struct {
		name string
		ref  string
		doc  string
		want string
	}{
		{name: "same_date_different_layout", ref: "1985-03-15", doc: "03/15/1985", want: types.ValidationStatusValidated},
		{name: "day_first_layout", ref: "1985-03-15", doc: "15/03/1985", want: types.ValidationStatusValidated},
		{name: "different_date", ref: "1985-03-15", doc: "1985-04-15", want: types.ValidationStatusMismatch},
		{name: "garbage_candidate_is_missing", ref: "1985-03-15", doc: "not a date", want: types.ValidationStatusMissing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cmp.CompareField(m, tc.ref, []CandidateValue{candidate(m.Name, tc.doc, "government_id", 0.95)})[0]
			if got.Status != tc.want {
				t.Fatalf("status=%s, want %s (note=%s)", got.Status, tc.want, got.Note)
			}
		})
	}
}

func TestCompareExactTextNormalizesCaseAndWhitespace(t *testing.T) {
	m := config.FieldMapping{
		Name:      "applicant_sin",
		FormField: "APPLICANT_SIN",
		Compare:   config.CompareExactText,
		Priority:  config.PriorityCritical,
	}
	cmp := NewComparator(testRegistry(t, m))

	got := cmp.CompareField(m, "  123 456 789 ", []CandidateValue{candidate(m.Name, "123 456  789", "government_id", 0.99)})[0]
	if got.Status != types.ValidationStatusValidated {
		t.Fatalf("status=%s, want validated", got.Status)
	}
}

func TestSimilarityIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"John", "Jonathan"},
		{"Acme Corp", "ACME Corporation"},
		{"", "anything"},
		{"same", "same"},
	}
	for _, p := range pairs {
		if Similarity(p[0], p[1]) != Similarity(p[1], p[0]) {
			t.Fatalf("similarity not symmetric for %q/%q", p[0], p[1])
		}
	}
}

func TestCompareFieldIsDeterministic(t *testing.T) {
	m := config.FieldMapping{
		Name:      "employer_name",
		FormField: "EMPLOYER_NAME",
		Compare:   config.CompareFuzzyText,
		Threshold: 0.70,
		Priority:  config.PriorityImportant,
	}
	cmp := NewComparator(testRegistry(t, m))
	cands := []CandidateValue{
		candidate(m.Name, "Acme Inc", "employment_letter", 0.9),
		candidate(m.Name, "Acme Corporation", "bank_statement", 0.7),
	}

	first := cmp.CompareField(m, "Acme Corp", cands)
	second := cmp.CompareField(m, "Acme Corp", cands)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different outcomes:\n%v\n%v", first, second)
	}
}
