package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/types"
)

type ValidationResultRepo interface {
	Create(ctx context.Context, tx *gorm.DB, results []*types.ValidationResult) ([]*types.ValidationResult, error)
	ListByApplication(ctx context.Context, tx *gorm.DB, applicationID string) ([]*types.ValidationResult, error)
	ListByDocument(ctx context.Context, tx *gorm.DB, documentID uuid.UUID) ([]*types.ValidationResult, error)
	DeleteByDocument(ctx context.Context, tx *gorm.DB, documentID uuid.UUID) error
	CreateSummary(ctx context.Context, tx *gorm.DB, summary *types.ValidationSummary) (*types.ValidationSummary, error)
	GetLatestSummary(ctx context.Context, tx *gorm.DB, applicationID string) (*types.ValidationSummary, error)
}

type validationResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewValidationResultRepo(db *gorm.DB, baseLog *logger.Logger) ValidationResultRepo {
	return &validationResultRepo{
		db:  db,
		log: baseLog.With("repo", "ValidationResultRepo"),
	}
}

func (r *validationResultRepo) Create(ctx context.Context, tx *gorm.DB, results []*types.ValidationResult) ([]*types.ValidationResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(results) == 0 {
		return []*types.ValidationResult{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *validationResultRepo) ListByApplication(ctx context.Context, tx *gorm.DB, applicationID string) ([]*types.ValidationResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ValidationResult
	err := transaction.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("field_name ASC, created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *validationResultRepo) ListByDocument(ctx context.Context, tx *gorm.DB, documentID uuid.UUID) ([]*types.ValidationResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ValidationResult
	err := transaction.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("field_name ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByDocument clears prior results before a document is re-validated so
// a retried validation job stays idempotent.
func (r *validationResultRepo) DeleteByDocument(ctx context.Context, tx *gorm.DB, documentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&types.ValidationResult{}).Error
}

func (r *validationResultRepo) CreateSummary(ctx context.Context, tx *gorm.DB, summary *types.ValidationSummary) (*types.ValidationSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(summary).Error; err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *validationResultRepo) GetLatestSummary(ctx context.Context, tx *gorm.DB, applicationID string) (*types.ValidationSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var summary types.ValidationSummary
	err := transaction.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
