package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openlend/docpipe-backend/internal/logger"
	"github.com/openlend/docpipe-backend/internal/types"
)

type GoldenRecordRepo interface {
	CreateNextVersion(ctx context.Context, tx *gorm.DB, record *types.GoldenRecord) (*types.GoldenRecord, error)
	GetLatest(ctx context.Context, tx *gorm.DB, applicationID string) (*types.GoldenRecord, error)
	ListVersions(ctx context.Context, tx *gorm.DB, applicationID string) ([]*types.GoldenRecord, error)
}

type goldenRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGoldenRecordRepo(db *gorm.DB, baseLog *logger.Logger) GoldenRecordRepo {
	return &goldenRecordRepo{
		db:  db,
		log: baseLog.With("repo", "GoldenRecordRepo"),
	}
}

// CreateNextVersion inserts the record with version = latest + 1. Prior
// versions are never updated in place.
func (r *goldenRecordRepo) CreateNextVersion(ctx context.Context, tx *gorm.DB, record *types.GoldenRecord) (*types.GoldenRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var latest int
		row := txx.Model(&types.GoldenRecord{}).
			Select("COALESCE(MAX(version), 0)").
			Where("application_id = ?", record.ApplicationID).
			Row()
		if err := row.Scan(&latest); err != nil {
			return err
		}
		record.Version = latest + 1
		return txx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *goldenRecordRepo) GetLatest(ctx context.Context, tx *gorm.DB, applicationID string) (*types.GoldenRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var record types.GoldenRecord
	err := transaction.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("version DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *goldenRecordRepo) ListVersions(ctx context.Context, tx *gorm.DB, applicationID string) ([]*types.GoldenRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.GoldenRecord
	err := transaction.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("version ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
