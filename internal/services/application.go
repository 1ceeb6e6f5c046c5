package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/repos"
	"github.com/openlend/docpipe-backend/internal/types"
)

type IntakeDocument struct {
	DocumentType string `json:"document_type"`
	Source       string `json:"source"`
	FileName     string `json:"file_name"`
	Content      []byte `json:"content"`
}

type IntakeRequest struct {
	ApplicationID string            `json:"application_id"`
	ApplicantName string            `json:"applicant_name"`
	FormFields    map[string]string `json:"form_fields"`
	Documents     []IntakeDocument  `json:"documents"`
}

// ApplicationService handles intake: one call registers the application, its
// form snapshot and its documents, and seeds an ingestion job per document.
type ApplicationService interface {
	Intake(ctx context.Context, req IntakeRequest) (*types.Application, error)
	Get(ctx context.Context, applicationID string) (*types.Application, error)
	List(ctx context.Context, status string, limit int) ([]*types.Application, error)
	FormFields(ctx context.Context, applicationID string) (map[string]string, error)
}

type applicationService struct {
	db       *gorm.DB
	log      *logger.Logger
	apps     repos.ApplicationRepo
	docs     repos.DocumentRepo
	blobs    BlobStore
	pipeline PipelineService
}

func NewApplicationService(db *gorm.DB, baseLog *logger.Logger, apps repos.ApplicationRepo, docs repos.DocumentRepo, blobs BlobStore, pipeline PipelineService) ApplicationService {
	return &applicationService{
		db:       db,
		log:      baseLog.With("service", "ApplicationService"),
		apps:     apps,
		docs:     docs,
		blobs:    blobs,
		pipeline: pipeline,
	}
}

func (s *applicationService) Intake(ctx context.Context, req IntakeRequest) (*types.Application, error) {
	if req.ApplicationID == "" {
		return nil, fmt.Errorf("application_id required")
	}
	if len(req.FormFields) == 0 {
		return nil, fmt.Errorf("form_fields required")
	}
	existing, err := s.apps.GetByApplicationID(ctx, nil, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("application %s already exists", req.ApplicationID)
	}

	form, err := json.Marshal(req.FormFields)
	if err != nil {
		return nil, fmt.Errorf("encode form fields: %w", err)
	}

	app := &types.Application{
		ID:            uuid.New(),
		ApplicationID: req.ApplicationID,
		ApplicantName: req.ApplicantName,
		Status:        types.ApplicationStatusReceived,
		FormFields:    form,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.apps.Create(ctx, tx, app); err != nil {
			return err
		}
		for _, d := range req.Documents {
			if _, err := s.registerDocument(ctx, tx, app.ApplicationID, d); err != nil {
				return err
			}
		}
		if len(req.Documents) > 0 {
			return s.apps.UpdateFields(ctx, tx, app.ApplicationID, map[string]interface{}{
				"status": types.ApplicationStatusProcessing,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Application received", "application_id", app.ApplicationID, "documents", len(req.Documents))
	return s.apps.GetByApplicationID(ctx, nil, app.ApplicationID)
}

func (s *applicationService) registerDocument(ctx context.Context, tx *gorm.DB, applicationID string, d IntakeDocument) (*types.Document, error) {
	if d.DocumentType == "" {
		return nil, fmt.Errorf("document_type required")
	}
	if len(d.Content) == 0 {
		return nil, fmt.Errorf("document %s has no content", d.FileName)
	}
	source := d.Source
	if source == "" {
		source = types.DocumentSourceApplicant
	}

	doc := &types.Document{
		ID:            uuid.New(),
		ApplicationID: applicationID,
		DocumentType:  d.DocumentType,
		Source:        source,
		FileName:      d.FileName,
		Status:        types.DocumentStatusUploaded,
	}
	doc.StorageKey = fmt.Sprintf("%s/%s_%d", applicationID, doc.ID, time.Now().UnixNano())
	if err := s.blobs.Put(doc.StorageKey, d.Content); err != nil {
		return nil, fmt.Errorf("store document %s: %w", d.FileName, err)
	}
	if _, err := s.docs.Create(ctx, tx, doc); err != nil {
		return nil, err
	}
	if _, err := s.pipeline.EnqueueStage(ctx, tx, applicationID, &doc.ID, types.JobTypeIngestion); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *applicationService) Get(ctx context.Context, applicationID string) (*types.Application, error) {
	return s.apps.GetByApplicationID(ctx, nil, applicationID)
}

func (s *applicationService) List(ctx context.Context, status string, limit int) ([]*types.Application, error) {
	return s.apps.List(ctx, nil, status, limit)
}

// FormFields decodes the stored form snapshot.
func (s *applicationService) FormFields(ctx context.Context, applicationID string) (map[string]string, error) {
	app, err := s.apps.GetByApplicationID(ctx, nil, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("application %s not found", applicationID)
	}
	out := map[string]string{}
	if len(app.FormFields) > 0 {
		if err := json.Unmarshal(app.FormFields, &out); err != nil {
			return nil, fmt.Errorf("decode form fields for %s: %w", applicationID, err)
		}
	}
	return out, nil
}
