package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/diana-hep/femtocode/pkg/model"
)

// ErrDatasetNotFound is returned when a dataset name is not in the catalog.
var ErrDatasetNotFound = errors.New("dataset not found")

// CatalogRepository is the interface for dataset catalog access.
type CatalogRepository interface {
	// CreateDataset registers a dataset and its columns.
	CreateDataset(ctx context.Context, ds *model.Dataset) error

	// GetDataset retrieves a dataset by name, with its columns.
	GetDataset(ctx context.Context, name string) (*model.Dataset, error)

	// ListDatasets returns all registered datasets, with their columns.
	ListDatasets(ctx context.Context) ([]*model.Dataset, error)

	// DeleteDataset removes a dataset and its columns.
	DeleteDataset(ctx context.Context, name string) error
}

// GormCatalogRepository implements CatalogRepository using GORM.
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository.
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// CreateDataset registers a dataset and its columns.
func (r *GormCatalogRepository) CreateDataset(ctx context.Context, ds *model.Dataset) error {
	rec := recordFromModel(ds)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create dataset %s: %w", ds.Name, err)
	}
	return nil
}

// GetDataset retrieves a dataset by name, with its columns.
func (r *GormCatalogRepository) GetDataset(ctx context.Context, name string) (*model.Dataset, error) {
	var rec DatasetRecord

	err := r.db.WithContext(ctx).
		Preload("Columns").
		Where("name = ?", name).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	return rec.ToModel(), nil
}

// ListDatasets returns all registered datasets, with their columns.
func (r *GormCatalogRepository) ListDatasets(ctx context.Context) ([]*model.Dataset, error) {
	var recs []DatasetRecord

	err := r.db.WithContext(ctx).
		Preload("Columns").
		Order("name").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}

	result := make([]*model.Dataset, len(recs))
	for i := range recs {
		result[i] = recs[i].ToModel()
	}
	return result, nil
}

// DeleteDataset removes a dataset and its columns.
func (r *GormCatalogRepository) DeleteDataset(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec DatasetRecord
		err := tx.Where("name = ?", name).First(&rec).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
			}
			return fmt.Errorf("failed to find dataset: %w", err)
		}

		if err := tx.Where("dataset_id = ?", rec.ID).Delete(&ColumnRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete columns: %w", err)
		}
		if err := tx.Delete(&rec).Error; err != nil {
			return fmt.Errorf("failed to delete dataset: %w", err)
		}
		return nil
	})
}
