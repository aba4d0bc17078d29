package repository

import (
	"context"
	"errors"

	"github.com/Zarcastral/farmops/models"
	"gorm.io/gorm"
)

// InventoryUsageLogRepositoryImpl implements InventoryUsageLogRepository.
// The table is append-only; no update or delete methods exist.
type InventoryUsageLogRepositoryImpl struct {
	*BaseRepository[models.InventoryUsageLog, models.InventoryUsageLogFilter]
}

// NewInventoryUsageLogRepository creates a new usage log repository
func NewInventoryUsageLogRepository(db *gorm.DB) InventoryUsageLogRepository {
	return &InventoryUsageLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.InventoryUsageLog, models.InventoryUsageLogFilter](db),
	}
}

// ByLogID finds a usage log entry by its minted display id
func (r *InventoryUsageLogRepositoryImpl) ByLogID(ctx context.Context, logID int64) (*models.InventoryUsageLog, error) {
	db := r.getDB(ctx)
	var entry models.InventoryUsageLog
	err := db.Where("log_id = ?", logID).Last(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ListByResource returns usage entries for a resource, newest first
func (r *InventoryUsageLogRepositoryImpl) ListByResource(ctx context.Context, kind models.ResourceKind, resourceName string, limit, offset int) ([]*models.InventoryUsageLog, error) {
	db := r.getDB(ctx)
	var entries []*models.InventoryUsageLog
	query := db.Where("kind = ? AND resource_name = ?", kind, resourceName).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByActor returns usage entries recorded by a user, newest first
func (r *InventoryUsageLogRepositoryImpl) ListByActor(ctx context.Context, actorID uint, limit, offset int) ([]*models.InventoryUsageLog, error) {
	db := r.getDB(ctx)
	var entries []*models.InventoryUsageLog
	query := db.Where("actor_id = ?", actorID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByProject returns usage entries attributed to a project code, newest first
func (r *InventoryUsageLogRepositoryImpl) ListByProject(ctx context.Context, projectID string, limit, offset int) ([]*models.InventoryUsageLog, error) {
	db := r.getDB(ctx)
	var entries []*models.InventoryUsageLog
	query := db.Where("project_id = ?", projectID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ByFilter retrieves usage entries matching the filter criteria
func (r *InventoryUsageLogRepositoryImpl) ByFilter(ctx context.Context, filter models.InventoryUsageLogFilter, orderBy string, limit, offset int) ([]*models.InventoryUsageLog, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("created_at DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var entries []*models.InventoryUsageLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of usage entries matching the filter
func (r *InventoryUsageLogRepositoryImpl) Count(ctx context.Context, filter models.InventoryUsageLogFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.InventoryUsageLog{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any usage entry matches the filter
func (r *InventoryUsageLogRepositoryImpl) Exists(ctx context.Context, filter models.InventoryUsageLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *InventoryUsageLogRepositoryImpl) applyFilter(db *gorm.DB, filter models.InventoryUsageLogFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.LogID != nil {
		db = db.Where("log_id = ?", *filter.LogID)
	}
	if filter.ResourceName != nil {
		db = db.Where("resource_name = ?", *filter.ResourceName)
	}
	if filter.Kind != nil {
		db = db.Where("kind = ?", *filter.Kind)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.ActorID != nil {
		db = db.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.ProjectID != nil {
		db = db.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}
