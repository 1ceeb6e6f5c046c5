package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/repos"
	"github.com/openlend/docpipe-backend/internal/types"
)

// DocumentService registers late-arriving documents against an existing
// application and answers document lookups.
type DocumentService interface {
	Register(ctx context.Context, applicationID string, d IntakeDocument) (*types.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Document, error)
	ListByApplication(ctx context.Context, applicationID string) ([]*types.Document, error)
}

type documentService struct {
	db       *gorm.DB
	log      *logger.Logger
	apps     repos.ApplicationRepo
	docs     repos.DocumentRepo
	blobs    BlobStore
	pipeline PipelineService
}

func NewDocumentService(db *gorm.DB, baseLog *logger.Logger, apps repos.ApplicationRepo, docs repos.DocumentRepo, blobs BlobStore, pipeline PipelineService) DocumentService {
	return &documentService{
		db:       db,
		log:      baseLog.With("service", "DocumentService"),
		apps:     apps,
		docs:     docs,
		blobs:    blobs,
		pipeline: pipeline,
	}
}

func (s *documentService) Register(ctx context.Context, applicationID string, d IntakeDocument) (*types.Document, error) {
	app, err := s.apps.GetByApplicationID(ctx, nil, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("application %s not found", applicationID)
	}
	if app.Status == types.ApplicationStatusCompleted || app.Status == types.ApplicationStatusFailed {
		return nil, fmt.Errorf("application %s is %s; documents can no longer be added", applicationID, app.Status)
	}
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
	doc.StorageKey = fmt.Sprintf("%s/%s", applicationID, doc.ID)
	if err := s.blobs.Put(doc.StorageKey, d.Content); err != nil {
		return nil, fmt.Errorf("store document %s: %w", d.FileName, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.docs.Create(ctx, tx, doc); err != nil {
			return err
		}
		if _, err := s.pipeline.EnqueueStage(ctx, tx, applicationID, &doc.ID, types.JobTypeIngestion); err != nil {
			return err
		}
		return s.apps.UpdateFields(ctx, tx, applicationID, map[string]interface{}{
			"status": types.ApplicationStatusProcessing,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Document registered", "application_id", applicationID, "document_id", doc.ID, "document_type", doc.DocumentType)
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*types.Document, error) {
	return s.docs.GetByID(ctx, nil, id)
}

func (s *documentService) ListByApplication(ctx context.Context, applicationID string) ([]*types.Document, error) {
	return s.docs.ListByApplication(ctx, nil, applicationID)
}
