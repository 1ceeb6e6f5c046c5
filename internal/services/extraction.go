package services

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openlend/docpipe-backend/internal/jobs"
	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/repos"
	"github.com/openlend/docpipe-backend/internal/types"
)

// ExtractionHandler runs OCR over the stored document and persists the
// resulting field/value/confidence triples.
type ExtractionHandler struct {
	log         *logger.Logger
	docs        repos.DocumentRepo
	extractions repos.ExtractionResultRepo
	blobs       BlobStore
	ocr         OCRClient
	pipeline    PipelineService
}

func NewExtractionHandler(baseLog *logger.Logger, docs repos.DocumentRepo, extractions repos.ExtractionResultRepo, blobs BlobStore, ocr OCRClient, pipeline PipelineService) *ExtractionHandler {
	return &ExtractionHandler{
		log:         baseLog.With("handler", "ExtractionHandler"),
		docs:        docs,
		extractions: extractions,
		blobs:       blobs,
		ocr:         ocr,
		pipeline:    pipeline,
	}
}

func (h *ExtractionHandler) Type() string { return types.JobTypeExtraction }

func (h *ExtractionHandler) Run(jc *jobs.Context) error {
	if jc.Job.DocumentID == nil {
		return fmt.Errorf("extraction job %s has no document", jc.Job.ID)
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

	fields, err := h.ocr.ExtractFields(jc.Ctx, doc.DocumentType, mimeTypeFor(doc.FileName), data)
	if err != nil {
		return jobs.Transient(fmt.Errorf("ocr extraction: %w", err))
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode extracted fields: %w", err)
	}
	res := &types.ExtractionResult{
		ID:              uuid.New(),
		ApplicationID:   doc.ApplicationID,
		DocumentID:      doc.ID,
		DocumentType:    doc.DocumentType,
		ExtractedFields: raw,
		ExtractedAt:     time.Now().UTC(),
	}
	if _, err := h.extractions.Create(jc.Ctx, nil, res); err != nil {
		return jobs.Transient(err)
	}
	if _, err := h.pipeline.EnqueueStage(jc.Ctx, nil, doc.ApplicationID, &doc.ID, types.JobTypeValidation); err != nil {
		return jobs.Transient(err)
	}
	jc.Log.Info("Document extracted", "document_id", doc.ID, "fields", len(fields))
	return nil
}

func mimeTypeFor(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".json":
		return "application/json"
	default:
		return "application/pdf"
	}
}
