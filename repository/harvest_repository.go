package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Zarcastral/farmops/models"
	"gorm.io/gorm"
)

// HarvestRepositoryImpl implements HarvestRepository
type HarvestRepositoryImpl struct {
	*BaseRepository[models.Harvest, models.HarvestFilter]
}

// NewHarvestRepository creates a new harvest repository
func NewHarvestRepository(db *gorm.DB) HarvestRepository {
	return &HarvestRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Harvest, models.HarvestFilter](db),
	}
}

// ByHarvestID finds a harvest by its minted display id
func (r *HarvestRepositoryImpl) ByHarvestID(ctx context.Context, harvestID int64) (*models.Harvest, error) {
	db := r.getDB(ctx)
	var harvest models.Harvest
	err := db.Where("harvest_id = ?", harvestID).Last(&harvest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &harvest, nil
}

// ListByProject returns the harvests of a project, newest first
func (r *HarvestRepositoryImpl) ListByProject(ctx context.Context, projectID uint, limit, offset int) ([]*models.Harvest, error) {
	db := r.getDB(ctx)
	query := db.Where("project_id = ?", projectID).Order("harvest_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var harvests []*models.Harvest
	if err := query.Find(&harvests).Error; err != nil {
		return nil, err
	}
	return harvests, nil
}

// ListByDateRange returns harvests recorded within [from, to]
func (r *HarvestRepositoryImpl) ListByDateRange(ctx context.Context, from, to time.Time, limit, offset int) ([]*models.Harvest, error) {
	db := r.getDB(ctx)
	query := db.Where("harvest_date >= ? AND harvest_date <= ?", from, to).
		Order("harvest_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var harvests []*models.Harvest
	if err := query.Find(&harvests).Error; err != nil {
		return nil, err
	}
	return harvests, nil
}

// TotalByCrop sums harvested quantity per crop name
func (r *HarvestRepositoryImpl) TotalByCrop(ctx context.Context, cropName string) (float64, error) {
	db := r.getDB(ctx)
	var total float64
	err := db.Model(&models.Harvest{}).
		Where("crop_name = ?", cropName).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ByFilter retrieves harvests matching the filter criteria
func (r *HarvestRepositoryImpl) ByFilter(ctx context.Context, filter models.HarvestFilter, orderBy string, limit, offset int) ([]*models.Harvest, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db, filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("harvest_date DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var harvests []*models.Harvest
	if err := query.Find(&harvests).Error; err != nil {
		return nil, err
	}
	return harvests, nil
}

// Count returns the number of harvests matching the filter
func (r *HarvestRepositoryImpl) Count(ctx context.Context, filter models.HarvestFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.Harvest{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any harvest matches the filter
func (r *HarvestRepositoryImpl) Exists(ctx context.Context, filter models.HarvestFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *HarvestRepositoryImpl) applyFilter(db *gorm.DB, filter models.HarvestFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.HarvestID != nil {
		db = db.Where("harvest_id = ?", *filter.HarvestID)
	}
	if filter.ProjectID != nil {
		db = db.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.TeamID != nil {
		db = db.Where("team_id = ?", *filter.TeamID)
	}
	if filter.CropName != nil {
		db = db.Where("crop_name = ?", *filter.CropName)
	}
	return db
}
