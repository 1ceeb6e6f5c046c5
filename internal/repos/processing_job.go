package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/types"
)

type ProcessingJobRepo interface {
	Create(ctx context.Context, tx *gorm.DB, jobs []*types.ProcessingJob) ([]*types.ProcessingJob, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ProcessingJob, error)
	ListByApplication(ctx context.Context, tx *gorm.DB, applicationID string) ([]*types.ProcessingJob, error)
	ListByApplicationAndType(ctx context.Context, tx *gorm.DB, applicationID, jobType string) ([]*types.ProcessingJob, error)
	ClaimNextRunnable(ctx context.Context, tx *gorm.DB, staleProcessing time.Duration) (*types.ProcessingJob, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	CountByStatus(ctx context.Context, tx *gorm.DB, applicationID string) (map[string]int64, error)
}

type processingJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProcessingJobRepo(db *gorm.DB, baseLog *logger.Logger) ProcessingJobRepo {
	return &processingJobRepo{
		db:  db,
		log: baseLog.With("repo", "ProcessingJobRepo"),
	}
}

func (r *processingJobRepo) Create(ctx context.Context, tx *gorm.DB, jobs []*types.ProcessingJob) ([]*types.ProcessingJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(jobs) == 0 {
		return []*types.ProcessingJob{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *processingJobRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ProcessingJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var job types.ProcessingJob
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *processingJobRepo) ListByApplication(ctx context.Context, tx *gorm.DB, applicationID string) ([]*types.ProcessingJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ProcessingJob
	err := transaction.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *processingJobRepo) ListByApplicationAndType(ctx context.Context, tx *gorm.DB, applicationID, jobType string) ([]*types.ProcessingJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ProcessingJob
	err := transaction.WithContext(ctx).
		Where("application_id = ? AND job_type = ?", applicationID, jobType).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ClaimNextRunnable atomically picks the next runnable job and moves it to
// processing. Priority ascending, then FIFO within the same priority.
// SKIP LOCKED keeps concurrent workers off the same row. Runnable means
// pending with its backoff gate passed, or processing with a locked_at older
// than staleProcessing: a claim a dead worker never finished. Reclaiming a
// stale job spends one retry, since the lost run may have done real work.
func (r *processingJobRepo) ClaimNextRunnable(ctx context.Context, tx *gorm.DB, staleProcessing time.Duration) (*types.ProcessingJob, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	staleCutoff := now.Add(-staleProcessing)
	var claimed *types.ProcessingJob
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var job types.ProcessingJob
		q := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(`
				(status = ? AND (not_before IS NULL OR not_before <= ?))
				OR (status = ? AND locked_at IS NOT NULL AND locked_at < ?)
			`, types.JobStatusPending, now, types.JobStatusProcessing, staleCutoff).
			Order("priority ASC, created_at ASC")
		qErr := q.First(&job).Error
		if errors.Is(qErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if qErr != nil {
			return qErr
		}
		updates := map[string]interface{}{
			"status":     types.JobStatusProcessing,
			"locked_at":  now,
			"started_at": now,
			"updated_at": now,
		}
		reclaimed := job.Status == types.JobStatusProcessing
		if reclaimed {
			updates["retry_count"] = gorm.Expr("retry_count + 1")
		}
		uErr := txx.Model(&types.ProcessingJob{}).
			Where("id = ?", job.ID).
			Updates(updates).Error
		if uErr != nil {
			return uErr
		}
		if reclaimed {
			job.RetryCount++
			r.log.Warn("Reclaimed stale job", "job_id", job.ID, "job_type", job.JobType, "retry_count", job.RetryCount)
		}
		job.Status = types.JobStatusProcessing
		job.LockedAt = &now
		job.StartedAt = &now
		claimed = &job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *processingJobRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	return transaction.WithContext(ctx).
		Model(&types.ProcessingJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *processingJobRepo) CountByStatus(ctx context.Context, tx *gorm.DB, applicationID string) (map[string]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := transaction.WithContext(ctx).
		Model(&types.ProcessingJob{}).
		Select("status, count(*) as count").
		Where("application_id = ?", applicationID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.Count
	}
	return out, nil
}
