package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/types"
)

// OCRClient turns raw document bytes into field/value/confidence triples.
// The pipeline treats it as a black box; extraction quality is its problem.
type OCRClient interface {
	ExtractFields(ctx context.Context, documentType string, mimeType string, data []byte) ([]types.ExtractedField, error)
	Close() error
}

type docAIClient struct {
	log         *logger.Logger
	client      *documentai.DocumentProcessorClient
	projectID   string
	location    string
	processorID string
}

// NewDocAIClient reads DOCUMENTAI_PROJECT_ID, DOCUMENTAI_LOCATION and
// DOCUMENTAI_PROCESSOR_ID from the environment.
func NewDocAIClient(log *logger.Logger) (OCRClient, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "DocAIClient")

	projectID := strings.TrimSpace(os.Getenv("DOCUMENTAI_PROJECT_ID"))
	if projectID == "" {
		return nil, fmt.Errorf("missing DOCUMENTAI_PROJECT_ID")
	}
	processorID := strings.TrimSpace(os.Getenv("DOCUMENTAI_PROCESSOR_ID"))
	if processorID == "" {
		return nil, fmt.Errorf("missing DOCUMENTAI_PROCESSOR_ID")
	}
	location := strings.TrimSpace(os.Getenv("DOCUMENTAI_LOCATION"))
	if location == "" {
		location = "us"
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)

	ctx := context.Background()
	c, err := documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}

	slog.Info("Document AI initialized", "endpoint", endpoint, "processor_id", processorID)

	return &docAIClient{
		log:         slog,
		client:      c,
		projectID:   projectID,
		location:    location,
		processorID: processorID,
	}, nil
}

func (s *docAIClient) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *docAIClient) ExtractFields(ctx context.Context, documentType string, mimeType string, data []byte) ([]types.ExtractedField, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	if len(data) == 0 {
		return nil, fmt.Errorf("empty document bytes")
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s", s.projectID, s.location, s.processorID)
	resp, err := s.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	if resp == nil || resp.Document == nil {
		return nil, nil
	}

	var out []types.ExtractedField
	for _, e := range resp.Document.Entities {
		if e == nil || e.Type == "" {
			continue
		}
		out = append(out, types.ExtractedField{
			FieldName:  e.Type,
			RawValue:   strings.TrimSpace(e.MentionText),
			Confidence: float64(e.Confidence),
		})
	}
	s.log.Debug("Extracted entities", "document_type", documentType, "fields", len(out))
	return out, nil
}
