package services

import (
	"fmt"

	"github.com/openlend/docpipe-backend/internal/jobs"
	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/repos"
	"github.com/openlend/docpipe-backend/internal/types"
)

// IngestionHandler checks the uploaded bytes are actually there and readable,
// moves the document into processing, and hands off to extraction.
type IngestionHandler struct {
	log      *logger.Logger
	docs     repos.DocumentRepo
	blobs    BlobStore
	pipeline PipelineService
}

func NewIngestionHandler(baseLog *logger.Logger, docs repos.DocumentRepo, blobs BlobStore, pipeline PipelineService) *IngestionHandler {
	return &IngestionHandler{
		log:      baseLog.With("handler", "IngestionHandler"),
		docs:     docs,
		blobs:    blobs,
		pipeline: pipeline,
	}
}

func (h *IngestionHandler) Type() string { return types.JobTypeIngestion }

func (h *IngestionHandler) Run(jc *jobs.Context) error {
	if jc.Job.DocumentID == nil {
		return fmt.Errorf("ingestion job %s has no document", jc.Job.ID)
	}
	doc, err := h.docs.GetByID(jc.Ctx, nil, *jc.Job.DocumentID)
	if err != nil {
		return jobs.Transient(err)
	}
	if doc == nil {
		return fmt.Errorf("document %s not found", jc.Job.DocumentID)
	}

	data, err := h.blobs.Get(doc.StorageKey)
	if err != nil {
		return jobs.Transient(fmt.Errorf("fetch document bytes: %w", err))
	}
	if len(data) == 0 {
		return fmt.Errorf("document %s is empty", doc.ID)
	}

	if err := h.docs.UpdateFields(jc.Ctx, nil, doc.ID, map[string]interface{}{
		"status": types.DocumentStatusProcessing,
	}); err != nil {
		return jobs.Transient(err)
	}
	if _, err := h.pipeline.EnqueueStage(jc.Ctx, nil, doc.ApplicationID, &doc.ID, types.JobTypeExtraction); err != nil {
		return jobs.Transient(err)
	}
	jc.Log.Info("Document ingested", "document_id", doc.ID, "bytes", len(data))
	return nil
}
