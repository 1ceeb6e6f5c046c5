package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlend/docpipe-backend/internal/config"
	"github.com/openlend/docpipe-backend/internal/jobs"
	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/reconcile"
	"github.com/openlend/docpipe-backend/internal/repos"
	"github.com/openlend/docpipe-backend/internal/types"
)

// ValidationHandler compares one document's extracted values against the
// application form and stores the per-field outcomes.
type ValidationHandler struct {
	log         *logger.Logger
	db          *gorm.DB
	registry    *config.Registry
	cmp         *reconcile.Comparator
	apps        ApplicationService
	docs        repos.DocumentRepo
	extractions repos.ExtractionResultRepo
	validations repos.ValidationResultRepo
}

func NewValidationHandler(db *gorm.DB, baseLog *logger.Logger, registry *config.Registry, apps ApplicationService, docs repos.DocumentRepo, extractions repos.ExtractionResultRepo, validations repos.ValidationResultRepo) *ValidationHandler {
	return &ValidationHandler{
		log:         baseLog.With("handler", "ValidationHandler"),
		db:          db,
		registry:    registry,
		cmp:         reconcile.NewComparator(registry),
		apps:        apps,
		docs:        docs,
		extractions: extractions,
		validations: validations,
	}
}

func (h *ValidationHandler) Type() string { return types.JobTypeValidation }

func (h *ValidationHandler) Run(jc *jobs.Context) error {
	if jc.Job.DocumentID == nil {
		return fmt.Errorf("validation job %s has no document", jc.Job.ID)
	}
	doc, err := h.docs.GetByID(jc.Ctx, nil, *jc.Job.DocumentID)
	if err != nil {
		return jobs.Transient(err)
	}
	if doc == nil {
		return fmt.Errorf("document %s not found", jc.Job.DocumentID)
	}

	form, err := h.apps.FormFields(jc.Ctx, doc.ApplicationID)
	if err != nil {
		return jobs.Transient(err)
	}

	extraction, err := h.extractions.GetLatestByDocument(jc.Ctx, nil, doc.ID)
	if err != nil {
		return jobs.Transient(err)
	}
	if extraction == nil {
		return fmt.Errorf("document %s has no extraction result", doc.ID)
	}
	var extracted []types.ExtractedField
	if err := json.Unmarshal(extraction.ExtractedFields, &extracted); err != nil {
		return fmt.Errorf("decode extraction for document %s: %w", doc.ID, err)
	}

	candidates := h.groupCandidates(doc, extraction, extracted)

	var results []*types.ValidationResult
	for _, m := range h.registry.Mappings() {
		cands, ok := candidates[m.Name]
		if !ok {
			continue
		}
		reference := form[m.FormField]
		for _, o := range h.cmp.CompareField(m, reference, cands) {
			results = append(results, &types.ValidationResult{
				ID:               uuid.New(),
				ApplicationID:    doc.ApplicationID,
				DocumentID:       &doc.ID,
				DocumentType:     doc.DocumentType,
				FieldName:        m.Name,
				ApplicationValue: reference,
				DocumentValue:    o.Candidate.Raw,
				Status:           o.Status,
				Severity:         o.Severity,
				Metric:           o.Metric,
				ConfidenceScore:  o.Candidate.Confidence,
				FlagForReview:    o.Severity == types.SeverityCritical,
				Notes:            o.Note,
			})
		}
	}

	err = h.db.WithContext(jc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := h.validations.DeleteByDocument(jc.Ctx, tx, doc.ID); err != nil {
			return err
		}
		if _, err := h.validations.Create(jc.Ctx, tx, results); err != nil {
			return err
		}
		return h.docs.UpdateFields(jc.Ctx, tx, doc.ID, map[string]interface{}{
			"status": types.DocumentStatusProcessed,
		})
	})
	if err != nil {
		return jobs.Transient(err)
	}

	jc.Log.Info("Document validated", "document_id", doc.ID, "results", len(results))
	return nil
}

// groupCandidates maps extracted values onto canonical fields via the alias
// table. Unknown aliases are skipped; they belong to no configured field.
func (h *ValidationHandler) groupCandidates(doc *types.Document, extraction *types.ExtractionResult, extracted []types.ExtractedField) map[string][]reconcile.CandidateValue {
	out := make(map[string][]reconcile.CandidateValue)
	for _, f := range extracted {
		m, ok := h.registry.ByAlias(f.FieldName)
		if !ok {
			continue
		}
		out[m.Name] = append(out[m.Name], reconcile.CandidateValue{
			FieldName:    m.Name,
			Raw:          f.RawValue,
			Source:       doc.ID.String(),
			DocumentType: doc.DocumentType,
			Confidence:   f.Confidence,
			ObservedAt:   extraction.ExtractedAt,
		})
	}
	return out
}
