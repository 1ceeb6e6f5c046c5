package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlend/docpipe-backend/internal/config"
	"github.com/openlend/docpipe-backend/internal/events"
	"github.com/openlend/docpipe-backend/internal/jobs"
	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/reconcile"
	"github.com/openlend/docpipe-backend/internal/repos"
	"github.com/openlend/docpipe-backend/internal/types"
)

// FormattingHandler assembles the golden record once the validation barrier
// is open. At most one build runs per application at a time.
type FormattingHandler struct {
	log         *logger.Logger
	db          *gorm.DB
	builder     *reconcile.Builder
	locks       *jobs.AppLocks
	apps        ApplicationService
	appsRepo    repos.ApplicationRepo
	docs        repos.DocumentRepo
	jobsRepo    repos.ProcessingJobRepo
	extractions repos.ExtractionResultRepo
	validations repos.ValidationResultRepo
	golden      repos.GoldenRecordRepo
	registry    *config.Registry
	publish     events.Publisher
}

func NewFormattingHandler(db *gorm.DB, baseLog *logger.Logger, registry *config.Registry, locks *jobs.AppLocks, apps ApplicationService, appsRepo repos.ApplicationRepo, docs repos.DocumentRepo, jobsRepo repos.ProcessingJobRepo, extractions repos.ExtractionResultRepo, validations repos.ValidationResultRepo, golden repos.GoldenRecordRepo, publish events.Publisher) *FormattingHandler {
	return &FormattingHandler{
		log:         baseLog.With("handler", "FormattingHandler"),
		db:          db,
		builder:     reconcile.NewBuilder(registry),
		locks:       locks,
		apps:        apps,
		appsRepo:    appsRepo,
		docs:        docs,
		jobsRepo:    jobsRepo,
		extractions: extractions,
		validations: validations,
		golden:      golden,
		registry:    registry,
		publish:     publish,
	}
}

func (h *FormattingHandler) Type() string { return types.JobTypeFormatting }

func (h *FormattingHandler) Run(jc *jobs.Context) error {
	applicationID := jc.Job.ApplicationID
	unlock := h.locks.Lock(applicationID)
	defer unlock()

	docs, err := h.docs.ListByApplication(jc.Ctx, nil, applicationID)
	if err != nil {
		return jobs.Transient(err)
	}
	validationJobs, err := h.jobsRepo.ListByApplicationAndType(jc.Ctx, nil, applicationID, types.JobTypeValidation)
	if err != nil {
		return jobs.Transient(err)
	}
	if !jobs.FormattingEligible(docs, validationJobs) {
		return jobs.Transient(fmt.Errorf("validation barrier not yet open for %s", applicationID))
	}

	form, err := h.apps.FormFields(jc.Ctx, applicationID)
	if err != nil {
		return jobs.Transient(err)
	}
	candidates, err := h.collectCandidates(jc, applicationID, docs)
	if err != nil {
		return err
	}

	build := h.builder.Build(applicationID, form, candidates)

	fieldsRaw, err := json.Marshal(build.Fields)
	if err != nil {
		return fmt.Errorf("encode golden fields: %w", err)
	}
	severityRaw, err := json.Marshal(build.Summary.SeverityCounts)
	if err != nil {
		return fmt.Errorf("encode severity counts: %w", err)
	}

	record := &types.GoldenRecord{
		ID:                     uuid.New(),
		ApplicationID:          applicationID,
		Fields:                 fieldsRaw,
		TotalFields:            build.TotalFields,
		VerifiedFields:         build.VerifiedFields,
		HighConfidenceFields:   build.HighConfidenceFields,
		DataQualityScore:       build.DataQualityScore,
		ReadyForDecisionEngine: build.ReadyForDecisionEngine,
	}
	summary := &types.ValidationSummary{
		ID:               uuid.New(),
		ApplicationID:    applicationID,
		TotalFields:      build.Summary.TotalFields,
		ValidatedFields:  build.Summary.ValidatedFields,
		MismatchedFields: build.Summary.MismatchedFields,
		MissingFields:    build.Summary.MissingFields,
		SeverityCounts:   severityRaw,
		FlagForReview:    build.Summary.FlagForReview,
	}

	statusMessage := fmt.Sprintf("golden record ready: %d/%d fields verified, quality %.2f", build.VerifiedFields, build.TotalFields, build.DataQualityScore)
	if build.Summary.FlagForReview {
		statusMessage += " (flagged for review)"
	}

	err = h.db.WithContext(jc.Ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := h.golden.CreateNextVersion(jc.Ctx, tx, record); err != nil {
			return err
		}
		if _, err := h.validations.CreateSummary(jc.Ctx, tx, summary); err != nil {
			return err
		}
		return h.appsRepo.UpdateFields(jc.Ctx, tx, applicationID, map[string]interface{}{
			"status":                types.ApplicationStatusCompleted,
			"status_message":        statusMessage,
			"completion_percentage": 100.0,
		})
	})
	if err != nil {
		return jobs.Transient(err)
	}

	now := time.Now().UTC()
	for _, ev := range []events.Event{
		{
			Type:          events.TypeGoldenRecord,
			ApplicationID: applicationID,
			Status:        fmt.Sprintf("v%d", record.Version),
			Message:       statusMessage,
			At:            now,
		},
		{
			Type:          events.TypeApplicationStatus,
			ApplicationID: applicationID,
			Status:        types.ApplicationStatusCompleted,
			Message:       statusMessage,
			At:            now,
		},
	} {
		if err := h.publish.Publish(jc.Ctx, ev); err != nil {
			h.log.Warn("Failed to publish event", "application_id", applicationID, "type", ev.Type, "error", err)
		}
	}

	jc.Log.Info("Golden record built",
		"application_id", applicationID,
		"version", record.Version,
		"quality", build.DataQualityScore,
		"ready", build.ReadyForDecisionEngine,
	)
	return nil
}

// collectCandidates gathers extraction output from documents that survived
// validation. Failed documents contribute nothing; fields seen only there
// surface as missing in the build.
func (h *FormattingHandler) collectCandidates(jc *jobs.Context, applicationID string, docs []*types.Document) (map[string][]reconcile.CandidateValue, error) {
	processed := make(map[uuid.UUID]*types.Document, len(docs))
	for _, d := range docs {
		if d.Status == types.DocumentStatusProcessed {
			processed[d.ID] = d
		}
	}

	extractions, err := h.extractions.ListByApplication(jc.Ctx, nil, applicationID)
	if err != nil {
		return nil, jobs.Transient(err)
	}

	// A retried extraction leaves older rows behind; only the latest run per
	// document counts.
	latest := make(map[uuid.UUID]*types.ExtractionResult, len(extractions))
	for _, ex := range extractions {
		prev, ok := latest[ex.DocumentID]
		if !ok || ex.ExtractedAt.After(prev.ExtractedAt) {
			latest[ex.DocumentID] = ex
		}
	}

	out := make(map[string][]reconcile.CandidateValue)
	for _, ex := range latest {
		doc, ok := processed[ex.DocumentID]
		if !ok {
			continue
		}
		var extracted []types.ExtractedField
		if err := json.Unmarshal(ex.ExtractedFields, &extracted); err != nil {
			return nil, fmt.Errorf("decode extraction for document %s: %w", ex.DocumentID, err)
		}
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
				ObservedAt:   ex.ExtractedAt,
			})
		}
	}
	return out, nil
}
