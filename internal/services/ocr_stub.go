package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/types"
)

// stubOCRClient decodes documents that are already JSON-encoded field lists.
// Used when no Document AI processor is configured, and by tests.
type stubOCRClient struct {
	log *logger.Logger
}

func NewStubOCRClient(log *logger.Logger) OCRClient {
	return &stubOCRClient{log: log.With("service", "StubOCRClient")}
}

func (s *stubOCRClient) ExtractFields(ctx context.Context, documentType string, mimeType string, data []byte) ([]types.ExtractedField, error) {
	var fields []types.ExtractedField
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("stub ocr: document is not a JSON field list: %w", err)
	}
	return fields, nil
}

func (s *stubOCRClient) Close() error { return nil }
