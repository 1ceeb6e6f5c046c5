package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/openlend/docpipe-backend/internal/config"
	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/repos"
	"github.com/openlend/docpipe-backend/internal/types"
)

// ApplicationStatus is the composite view served by the status endpoint.
type ApplicationStatus struct {
	Application      *types.Application       `json:"application"`
	Documents        []*types.Document        `json:"documents"`
	MissingDocuments []string                 `json:"missing_documents"`
	JobCounts        map[string]int64         `json:"job_counts"`
	Summary          *types.ValidationSummary `json:"validation_summary,omitempty"`
	GoldenRecord     *types.GoldenRecord      `json:"golden_record,omitempty"`
}

// StatusService answers the observability queries: application status,
// validation detail, golden record versions, and the audit trail.
type StatusService interface {
	ApplicationStatus(ctx context.Context, applicationID string) (*ApplicationStatus, error)
	ValidationResults(ctx context.Context, applicationID string) ([]*types.ValidationResult, error)
	LatestGoldenRecord(ctx context.Context, applicationID string) (*types.GoldenRecord, error)
	GoldenRecordVersions(ctx context.Context, applicationID string) ([]*types.GoldenRecord, error)
	Logs(ctx context.Context, applicationID, stage string) ([]*types.ProcessingLog, error)
	DocumentLogs(ctx context.Context, documentID uuid.UUID) ([]*types.ProcessingLog, error)
	Jobs(ctx context.Context, applicationID string) ([]*types.ProcessingJob, error)
}

type statusService struct {
	log         *logger.Logger
	registry    *config.Registry
	apps        repos.ApplicationRepo
	docs        repos.DocumentRepo
	jobsRepo    repos.ProcessingJobRepo
	validations repos.ValidationResultRepo
	golden      repos.GoldenRecordRepo
	logs        repos.ProcessingLogRepo
}

func NewStatusService(baseLog *logger.Logger, registry *config.Registry, apps repos.ApplicationRepo, docs repos.DocumentRepo, jobsRepo repos.ProcessingJobRepo, validations repos.ValidationResultRepo, golden repos.GoldenRecordRepo, logs repos.ProcessingLogRepo) StatusService {
	return &statusService{
		log:         baseLog.With("service", "StatusService"),
		registry:    registry,
		apps:        apps,
		docs:        docs,
		jobsRepo:    jobsRepo,
		validations: validations,
		golden:      golden,
		logs:        logs,
	}
}

func (s *statusService) ApplicationStatus(ctx context.Context, applicationID string) (*ApplicationStatus, error) {
	app, err := s.apps.GetByApplicationID(ctx, nil, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("application %s not found", applicationID)
	}
	docs, err := s.docs.ListByApplication(ctx, nil, applicationID)
	if err != nil {
		return nil, err
	}
	counts, err := s.jobsRepo.CountByStatus(ctx, nil, applicationID)
	if err != nil {
		return nil, err
	}
	summary, err := s.validations.GetLatestSummary(ctx, nil, applicationID)
	if err != nil {
		return nil, err
	}
	record, err := s.golden.GetLatest(ctx, nil, applicationID)
	if err != nil {
		return nil, err
	}
	return &ApplicationStatus{
		Application:      app,
		Documents:        docs,
		MissingDocuments: missingDocuments(s.registry.RequiredDocuments(), docs),
		JobCounts:        counts,
		Summary:          summary,
		GoldenRecord:     record,
	}, nil
}

// missingDocuments lists the required document types the application has not
// supplied yet. A failed document still counts as supplied; its fields
// surface as missing in validation instead.
func missingDocuments(required []string, docs []*types.Document) []string {
	present := make(map[string]bool, len(docs))
	for _, d := range docs {
		present[d.DocumentType] = true
	}
	missing := []string{}
	for _, t := range required {
		if !present[t] {
			missing = append(missing, t)
		}
	}
	return missing
}

func (s *statusService) ValidationResults(ctx context.Context, applicationID string) ([]*types.ValidationResult, error) {
	return s.validations.ListByApplication(ctx, nil, applicationID)
}

func (s *statusService) LatestGoldenRecord(ctx context.Context, applicationID string) (*types.GoldenRecord, error) {
	return s.golden.GetLatest(ctx, nil, applicationID)
}

func (s *statusService) GoldenRecordVersions(ctx context.Context, applicationID string) ([]*types.GoldenRecord, error) {
	return s.golden.ListVersions(ctx, nil, applicationID)
}

func (s *statusService) Logs(ctx context.Context, applicationID, stage string) ([]*types.ProcessingLog, error) {
	return s.logs.ListByApplication(ctx, nil, applicationID, stage)
}

func (s *statusService) DocumentLogs(ctx context.Context, documentID uuid.UUID) ([]*types.ProcessingLog, error) {
	return s.logs.ListByDocument(ctx, nil, documentID)
}

func (s *statusService) Jobs(ctx context.Context, applicationID string) ([]*types.ProcessingJob, error) {
	return s.jobsRepo.ListByApplication(ctx, nil, applicationID)
}
