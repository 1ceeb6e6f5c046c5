package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/types"
)

type ApplicationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, app *types.Application) (*types.Application, error)
	GetByApplicationID(ctx context.Context, tx *gorm.DB, applicationID string) (*types.Application, error)
	List(ctx context.Context, tx *gorm.DB, status string, limit int) ([]*types.Application, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, applicationID string, updates map[string]interface{}) error
}

type applicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return &applicationRepo{
		db:  db,
		log: baseLog.With("repo", "ApplicationRepo"),
	}
}

func (r *applicationRepo) Create(ctx context.Context, tx *gorm.DB, app *types.Application) (*types.Application, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

func (r *applicationRepo) GetByApplicationID(ctx context.Context, tx *gorm.DB, applicationID string) (*types.Application, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var app types.Application
	err := transaction.WithContext(ctx).
		Where("application_id = ?", applicationID).
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) List(ctx context.Context, tx *gorm.DB, status string, limit int) ([]*types.Application, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.Application
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *applicationRepo) UpdateFields(ctx context.Context, tx *gorm.DB, applicationID string, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	return transaction.WithContext(ctx).
		Model(&types.Application{}).
		Where("application_id = ?", applicationID).
		Updates(updates).Error
}
