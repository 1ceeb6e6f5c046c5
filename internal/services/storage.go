package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/utils"
)

// BlobStore keeps the raw uploaded document bytes. Keys are opaque to the
// rest of the pipeline.
type BlobStore interface {
	Put(key string, data []byte) error
	Get(key string) ([]byte, error)
}

type localBlobStore struct {
	log *logger.Logger
	dir string
}

// NewLocalBlobStore stores blobs under STORAGE_DIR (default ./data/documents).
func NewLocalBlobStore(log *logger.Logger) (BlobStore, error) {
	dir := utils.GetEnv("STORAGE_DIR", "./data/documents", log)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return &localBlobStore{
		log: log.With("service", "LocalBlobStore"),
		dir: dir,
	}, nil
}

func (s *localBlobStore) path(key string) (string, error) {
	clean := filepath.Clean(key)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}

func (s *localBlobStore) Put(key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (s *localBlobStore) Get(key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, nil
}
