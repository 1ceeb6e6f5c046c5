package db

import (
	"path/filepath"
	"testing"

	"github.com/openlend/docpipe-backend/internal/logger"
)

func TestSQLiteMigrations(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "docpipe.db"))

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	svc, err := New(log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("AutoMigrateAll on sqlite: %v", err)
	}
}
