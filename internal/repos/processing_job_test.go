package repos

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "jobs.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.ProcessingJob{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testJobRepo(t *testing.T) (ProcessingJobRepo, *gorm.DB) {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	db := openTestDB(t)
	return NewProcessingJobRepo(db, log), db
}

func seedJob(t *testing.T, db *gorm.DB, job *types.ProcessingJob) *types.ProcessingJob {
	t.Helper()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = 3
	}
	if err := db.Create(job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func TestClaimNextRunnablePicksPendingByPriority(t *testing.T) {
	repo, db := testJobRepo(t)
	ctx := context.Background()

	seedJob(t, db, &types.ProcessingJob{ApplicationID: "APP-1", JobType: types.JobTypeFormatting, Status: types.JobStatusPending, Priority: 40})
	want := seedJob(t, db, &types.ProcessingJob{ApplicationID: "APP-1", JobType: types.JobTypeIngestion, Status: types.JobStatusPending, Priority: 10})

	claimed, err := repo.ClaimNextRunnable(ctx, nil, 5*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed == nil || claimed.ID != want.ID {
		t.Fatalf("claimed %+v, want the lower-priority-number job %s", claimed, want.ID)
	}
	if claimed.Status != types.JobStatusProcessing || claimed.LockedAt == nil {
		t.Fatalf("claimed job not moved to processing: %+v", claimed)
	}
}

func TestClaimNextRunnableRespectsBackoffGate(t *testing.T) {
	repo, db := testJobRepo(t)
	ctx := context.Background()

	later := time.Now().Add(1 * time.Hour)
	seedJob(t, db, &types.ProcessingJob{ApplicationID: "APP-1", JobType: types.JobTypeExtraction, Status: types.JobStatusPending, Priority: 20, NotBefore: &later})

	claimed, err := repo.ClaimNextRunnable(ctx, nil, 5*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed != nil {
		t.Fatalf("claimed %+v, want nil while backoff gate is closed", claimed)
	}
}

func TestClaimNextRunnableReclaimsStaleProcessingJob(t *testing.T) {
	repo, db := testJobRepo(t)
	ctx := context.Background()

	staleLock := time.Now().Add(-2 * time.Hour)
	orphan := seedJob(t, db, &types.ProcessingJob{
		ApplicationID: "APP-1",
		JobType:       types.JobTypeValidation,
		Status:        types.JobStatusProcessing,
		Priority:      30,
		RetryCount:    1,
		LockedAt:      &staleLock,
	})

	claimed, err := repo.ClaimNextRunnable(ctx, nil, 5*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed == nil || claimed.ID != orphan.ID {
		t.Fatalf("claimed %+v, want the orphaned job %s", claimed, orphan.ID)
	}
	if claimed.RetryCount != 2 {
		t.Fatalf("retry_count=%d, want 2: the lost run spends a retry", claimed.RetryCount)
	}
	if claimed.LockedAt == nil || !claimed.LockedAt.After(staleLock) {
		t.Fatalf("locked_at not refreshed: %v", claimed.LockedAt)
	}

	persisted, err := repo.GetByID(ctx, nil, orphan.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if persisted.RetryCount != 2 || persisted.Status != types.JobStatusProcessing {
		t.Fatalf("persisted job %+v, want processing with retry_count 2", persisted)
	}
}

func TestClaimNextRunnableLeavesFreshProcessingJobAlone(t *testing.T) {
	repo, db := testJobRepo(t)
	ctx := context.Background()

	justNow := time.Now().Add(-10 * time.Second)
	seedJob(t, db, &types.ProcessingJob{
		ApplicationID: "APP-1",
		JobType:       types.JobTypeValidation,
		Status:        types.JobStatusProcessing,
		Priority:      30,
		LockedAt:      &justNow,
	})

	claimed, err := repo.ClaimNextRunnable(ctx, nil, 5*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed != nil {
		t.Fatalf("claimed %+v, want nil: the owning worker is still alive", claimed)
	}
}

func TestClaimNextRunnablePrefersPendingOverStale(t *testing.T) {
	repo, db := testJobRepo(t)
	ctx := context.Background()

	staleLock := time.Now().Add(-2 * time.Hour)
	seedJob(t, db, &types.ProcessingJob{ApplicationID: "APP-1", JobType: types.JobTypeValidation, Status: types.JobStatusProcessing, Priority: 30, LockedAt: &staleLock})
	pending := seedJob(t, db, &types.ProcessingJob{ApplicationID: "APP-2", JobType: types.JobTypeIngestion, Status: types.JobStatusPending, Priority: 10})

	claimed, err := repo.ClaimNextRunnable(ctx, nil, 5*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed == nil || claimed.ID != pending.ID {
		t.Fatalf("claimed %+v, want the higher-priority pending job %s", claimed, pending.ID)
	}
}
