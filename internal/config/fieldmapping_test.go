package config

import "testing"

func TestLoadRegistryFromYAML(t *testing.T) {
	raw := []byte(`
fields:
  - name: annual_income
    form_field: ANNUAL_INCOME
    document_aliases: [gross_income, annual_salary]
    compare: currency
    priority: critical
    source_preference: [employment_letter, bank_statement]
  - name: applicant_email
    form_field: APPLICANT_EMAIL
    document_aliases: [email]
    compare: fuzzy-text
    priority: optional
`)
	reg, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	income, ok := reg.ByName("annual_income")
	if !ok {
		t.Fatalf("annual_income not registered")
	}
	if income.Tolerance != 0.02 {
		t.Fatalf("critical currency tolerance=%v, want default 0.02", income.Tolerance)
	}
	if got := income.SourceRank("employment_letter"); got != 0 {
		t.Fatalf("employment_letter rank=%d, want 0", got)
	}
	if got := income.SourceRank("property_assessment"); got != 2 {
		t.Fatalf("unlisted source rank=%d, want last (2)", got)
	}

	email, _ := reg.ByName("applicant_email")
	if email.Threshold != 0.90 {
		t.Fatalf("email fuzzy threshold=%v, want default 0.90", email.Threshold)
	}

	if m, ok := reg.ByAlias("gross_income"); !ok || m.Name != "annual_income" {
		t.Fatalf("alias gross_income resolved to %q, want annual_income", m.Name)
	}
}

func TestLoadRequiredDocuments(t *testing.T) {
	raw := []byte(`
required_documents: [government_id, pay_stub]
fields:
  - name: x
    form_field: X
    compare: exact-text
    priority: optional
`)
	reg, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := reg.RequiredDocuments()
	if len(got) != 2 || got[0] != "government_id" || got[1] != "pay_stub" {
		t.Fatalf("required documents=%v, want [government_id pay_stub]", got)
	}
}

func TestLoadFallsBackToDefaultChecklist(t *testing.T) {
	raw := []byte(`
fields:
  - name: x
    form_field: X
    compare: exact-text
    priority: optional
`)
	reg, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(reg.RequiredDocuments()) == 0 {
		t.Fatalf("expected default checklist when config omits required_documents")
	}
}

func TestRegistryRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name     string
		mappings []FieldMapping
	}{
		{
			name: "unknown_comparison_type",
			mappings: []FieldMapping{{
				Name: "x", FormField: "X", Compare: "soundex", Priority: PriorityOptional,
			}},
		},
		{
			name: "unknown_priority",
			mappings: []FieldMapping{{
				Name: "x", FormField: "X", Compare: CompareExactText, Priority: "severe",
			}},
		},
		{
			name: "missing_form_field",
			mappings: []FieldMapping{{
				Name: "x", Compare: CompareExactText, Priority: PriorityOptional,
			}},
		},
		{
			name: "duplicate_name",
			mappings: []FieldMapping{
				{Name: "x", FormField: "X", Compare: CompareExactText, Priority: PriorityOptional},
				{Name: "x", FormField: "X2", Compare: CompareExactText, Priority: PriorityOptional},
			},
		},
		{
			name: "threshold_out_of_range",
			mappings: []FieldMapping{{
				Name: "x", FormField: "X", Compare: CompareFuzzyText, Threshold: 1.2, Priority: PriorityOptional,
			}},
		},
		{name: "empty_registry"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewRegistry(tc.mappings); err == nil {
				t.Fatalf("expected configuration error")
			}
		})
	}
}

func TestDefaultFieldMappingsAreValid(t *testing.T) {
	reg, err := NewRegistry(DefaultFieldMappings())
	if err != nil {
		t.Fatalf("default registry invalid: %v", err)
	}
	fuzzy, _ := reg.ByName("applicant_first_name")
	if fuzzy.Threshold != 0.80 {
		t.Fatalf("default fuzzy threshold=%v, want 0.80", fuzzy.Threshold)
	}
	income, _ := reg.ByName("annual_income")
	if income.Tolerance != 0.02 {
		t.Fatalf("critical currency tolerance=%v, want 0.02", income.Tolerance)
	}
}
