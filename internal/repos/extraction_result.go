package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/types"
)

type ExtractionResultRepo interface {
	Create(ctx context.Context, tx *gorm.DB, res *types.ExtractionResult) (*types.ExtractionResult, error)
	GetLatestByDocument(ctx context.Context, tx *gorm.DB, documentID uuid.UUID) (*types.ExtractionResult, error)
	ListByApplication(ctx context.Context, tx *gorm.DB, applicationID string) ([]*types.ExtractionResult, error)
}

type extractionResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExtractionResultRepo(db *gorm.DB, baseLog *logger.Logger) ExtractionResultRepo {
	return &extractionResultRepo{
		db:  db,
		log: baseLog.With("repo", "ExtractionResultRepo"),
	}
}

func (r *extractionResultRepo) Create(ctx context.Context, tx *gorm.DB, res *types.ExtractionResult) (*types.ExtractionResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (r *extractionResultRepo) GetLatestByDocument(ctx context.Context, tx *gorm.DB, documentID uuid.UUID) (*types.ExtractionResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var res types.ExtractionResult
	err := transaction.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("extracted_at DESC").
		First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *extractionResultRepo) ListByApplication(ctx context.Context, tx *gorm.DB, applicationID string) ([]*types.ExtractionResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ExtractionResult
	err := transaction.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("extracted_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
