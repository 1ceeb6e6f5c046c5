package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Comparison types supported by the field comparator.
const (
	CompareExactText = "exact-text"
	CompareFuzzyText = "fuzzy-text"
	CompareCurrency  = "currency"
	CompareDate      = "date"
	CompareNumeric   = "numeric"
)

// Priority classes. Severity of a mismatch/missing outcome derives from the
// field's priority class combined with match status.
const (
	PriorityCritical  = "critical"
	PriorityImportant = "important"
	PriorityOptional  = "optional"
)

const (
	defaultFuzzyThreshold      = 0.80
	defaultEmailFuzzyThreshold = 0.90
	defaultNumericTolerance    = 0.05
	defaultCurrencyTolerance   = 0.05
	criticalCurrencyTolerance  = 0.02
)

// FieldMapping ties one canonical field to its application-form field, its
// document-field aliases, and its comparison semantics. Loaded once at
// startup and never mutated.
type FieldMapping struct {
	Name             string   `yaml:"name"`
	FormField        string   `yaml:"form_field"`
	DocumentAliases  []string `yaml:"document_aliases"`
	Compare          string   `yaml:"compare"`
	Threshold        float64  `yaml:"threshold,omitempty"` // fuzzy-text similarity floor
	Tolerance        float64  `yaml:"tolerance,omitempty"` // currency/numeric relative difference ceiling
	Priority         string   `yaml:"priority"`
	SourcePreference []string `yaml:"source_preference,omitempty"` // document types, best first
}

// Registry is the immutable field-mapping configuration handed to the
// comparator, resolver and builder.
type Registry struct {
	mappings     []FieldMapping
	byName       map[string]int
	byAlias      map[string]int
	requiredDocs []string
}

type registryFile struct {
	Fields            []FieldMapping `yaml:"fields"`
	RequiredDocuments []string       `yaml:"required_documents"`
}

// Load reads a registry from YAML. Any malformed mapping is a hard error:
// the engine refuses to process jobs with undefined comparison semantics.
func Load(raw []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse field mapping config: %w", err)
	}
	r, err := NewRegistry(f.Fields)
	if err != nil {
		return nil, err
	}
	r.requiredDocs = f.RequiredDocuments
	if len(r.requiredDocs) == 0 {
		r.requiredDocs = DefaultRequiredDocuments()
	}
	return r, nil
}

// LoadFile reads the registry from path, or returns the built-in default
// registry when path is empty.
func LoadFile(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		r, err := NewRegistry(DefaultFieldMappings())
		if err != nil {
			return nil, err
		}
		r.requiredDocs = DefaultRequiredDocuments()
		return r, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field mapping config: %w", err)
	}
	return Load(raw)
}

func NewRegistry(mappings []FieldMapping) (*Registry, error) {
	if len(mappings) == 0 {
		return nil, fmt.Errorf("field mapping registry is empty")
	}
	r := &Registry{
		mappings: make([]FieldMapping, 0, len(mappings)),
		byName:   make(map[string]int, len(mappings)),
		byAlias:  make(map[string]int),
	}
	for _, m := range mappings {
		if err := validateMapping(&m); err != nil {
			return nil, fmt.Errorf("field %q: %w", m.Name, err)
		}
		if _, dup := r.byName[m.Name]; dup {
			return nil, fmt.Errorf("field %q: duplicate mapping", m.Name)
		}
		applyDefaults(&m)
		idx := len(r.mappings)
		r.mappings = append(r.mappings, m)
		r.byName[m.Name] = idx
		for _, alias := range m.DocumentAliases {
			r.byAlias[alias] = idx
		}
	}
	return r, nil
}

func validateMapping(m *FieldMapping) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("missing canonical name")
	}
	if strings.TrimSpace(m.FormField) == "" {
		return fmt.Errorf("missing form field")
	}
	switch m.Compare {
	case CompareExactText, CompareFuzzyText, CompareCurrency, CompareDate, CompareNumeric:
	default:
		return fmt.Errorf("unknown comparison type %q", m.Compare)
	}
	switch m.Priority {
	case PriorityCritical, PriorityImportant, PriorityOptional:
	default:
		return fmt.Errorf("unknown priority class %q", m.Priority)
	}
	if m.Threshold < 0 || m.Threshold > 1 {
		return fmt.Errorf("threshold %v out of range [0,1]", m.Threshold)
	}
	if m.Tolerance < 0 || m.Tolerance > 1 {
		return fmt.Errorf("tolerance %v out of range [0,1]", m.Tolerance)
	}
	return nil
}

func applyDefaults(m *FieldMapping) {
	if m.Compare == CompareFuzzyText && m.Threshold == 0 {
		if looksLikeEmailField(m.Name) {
			m.Threshold = defaultEmailFuzzyThreshold
		} else {
			m.Threshold = defaultFuzzyThreshold
		}
	}
	if m.Tolerance == 0 {
		switch m.Compare {
		case CompareCurrency:
			if m.Priority == PriorityCritical {
				m.Tolerance = criticalCurrencyTolerance
			} else {
				m.Tolerance = defaultCurrencyTolerance
			}
		case CompareNumeric:
			m.Tolerance = defaultNumericTolerance
		}
	}
}

func looksLikeEmailField(name string) bool {
	return strings.Contains(strings.ToLower(name), "email")
}

// Mappings returns the mappings in declaration order. Callers must not
// mutate the returned slice.
func (r *Registry) Mappings() []FieldMapping {
	return r.mappings
}

func (r *Registry) ByName(name string) (FieldMapping, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return FieldMapping{}, false
	}
	return r.mappings[idx], true
}

// RequiredDocuments returns the document types every application is
// expected to supply. Empty for registries built directly from mappings.
func (r *Registry) RequiredDocuments() []string {
	return r.requiredDocs
}

// ByAlias resolves a document-field alias to its canonical mapping.
func (r *Registry) ByAlias(alias string) (FieldMapping, bool) {
	if idx, ok := r.byAlias[alias]; ok {
		return r.mappings[idx], true
	}
	return r.ByName(alias)
}

// SourceRank returns the preference rank of a document type for a field.
// Lower ranks win ties; unlisted sources rank last.
func (m FieldMapping) SourceRank(documentType string) int {
	for i, s := range m.SourcePreference {
		if s == documentType {
			return i
		}
	}
	return len(m.SourcePreference)
}
