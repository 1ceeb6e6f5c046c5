package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/types"
)

// ProcessingLogRepo is append-only. There is deliberately no update or delete
// surface; the audit trail only grows.
type ProcessingLogRepo interface {
	Append(ctx context.Context, tx *gorm.DB, entry *types.ProcessingLog) (*types.ProcessingLog, error)
	ListByApplication(ctx context.Context, tx *gorm.DB, applicationID string, stage string) ([]*types.ProcessingLog, error)
	ListByDocument(ctx context.Context, tx *gorm.DB, documentID uuid.UUID) ([]*types.ProcessingLog, error)
}

type processingLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProcessingLogRepo(db *gorm.DB, baseLog *logger.Logger) ProcessingLogRepo {
	return &processingLogRepo{
		db:  db,
		log: baseLog.With("repo", "ProcessingLogRepo"),
	}
}

func (r *processingLogRepo) Append(ctx context.Context, tx *gorm.DB, entry *types.ProcessingLog) (*types.ProcessingLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *processingLogRepo) ListByApplication(ctx context.Context, tx *gorm.DB, applicationID string, stage string) ([]*types.ProcessingLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC")
	if stage != "" {
		q = q.Where("stage = ?", stage)
	}
	var out []*types.ProcessingLog
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *processingLogRepo) ListByDocument(ctx context.Context, tx *gorm.DB, documentID uuid.UUID) ([]*types.ProcessingLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ProcessingLog
	err := transaction.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
