package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/utils"
	"gorm.io/gorm"
)

// ResourceStockRepositoryImpl implements ResourceStockRepository
type ResourceStockRepositoryImpl struct {
	*BaseRepository[models.ResourceStock, models.ResourceStockFilter]
}

// NewResourceStockRepository creates a new resource stock repository
func NewResourceStockRepository(db *gorm.DB) ResourceStockRepository {
	return &ResourceStockRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ResourceStock, models.ResourceStockFilter](db),
	}
}

// ByResourceID finds a stock record by its minted display id within a kind
func (r *ResourceStockRepositoryImpl) ByResourceID(ctx context.Context, kind models.ResourceKind, resourceID int64) (*models.ResourceStock, error) {
	db := r.getDB(ctx)
	var stock models.ResourceStock
	err := db.Where("kind = ? AND resource_id = ?", kind, resourceID).Last(&stock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stock, nil
}

// ByKey finds the stock partition for (kind, name, owner). The unique index on
// these columns makes this the O(1) owner-partition lookup.
func (r *ResourceStockRepositoryImpl) ByKey(ctx context.Context, kind models.ResourceKind, name, ownedBy string) (*models.ResourceStock, error) {
	db := r.getDB(ctx)
	var stock models.ResourceStock
	err := db.Where("kind = ? AND name = ? AND owned_by = ?", kind, name, ownedBy).Last(&stock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &stock, nil
}

// ListByOwner returns all stock partitions of a kind scoped to an owner role,
// one pass, ordered by name.
func (r *ResourceStockRepositoryImpl) ListByOwner(ctx context.Context, kind models.ResourceKind, ownedBy string) ([]*models.ResourceStock, error) {
	db := r.getDB(ctx)
	var stocks []*models.ResourceStock
	err := db.Where("kind = ? AND owned_by = ?", kind, ownedBy).
		Order("name ASC").
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}

// ListByKind returns stock records of a kind across all owner partitions
func (r *ResourceStockRepositoryImpl) ListByKind(ctx context.Context, kind models.ResourceKind, limit, offset int) ([]*models.ResourceStock, error) {
	db := r.getDB(ctx)
	var stocks []*models.ResourceStock
	query := db.Where("kind = ?", kind).Order("name ASC, owned_by ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// UpdateStock writes the new stock level, unit, and replenishment timestamp
func (r *ResourceStockRepositoryImpl) UpdateStock(ctx context.Context, id uint, newStock float64, unit string, stockDate time.Time) (err error) {
	db, ownsTx, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { finishWrite(db, ownsTx, err) }()

	err = db.Model(&models.ResourceStock{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"current_stock": newStock,
			"unit":          unit,
			"stock_date":    stockDate,
			"updated_at":    utils.UTCNow(),
		}).Error
	return err
}

// UpdateMetadata corrects the descriptive fields of a stock record
func (r *ResourceStockRepositoryImpl) UpdateMetadata(ctx context.Context, id uint, category, name string) (err error) {
	db, ownsTx, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { finishWrite(db, ownsTx, err) }()

	updates := map[string]any{"updated_at": utils.UTCNow()}
	if category != "" {
		updates["category"] = category
	}
	if name != "" {
		updates["name"] = name
	}

	err = db.Model(&models.ResourceStock{}).Where("id = ?", id).Updates(updates).Error
	return err
}

// Delete soft-deletes a stock record
func (r *ResourceStockRepositoryImpl) Delete(ctx context.Context, id uint) (err error) {
	db, ownsTx, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { finishWrite(db, ownsTx, err) }()

	err = db.Delete(&models.ResourceStock{}, id).Error
	return err
}

// ByFilter retrieves stock records matching the filter criteria
func (r *ResourceStockRepositoryImpl) ByFilter(ctx context.Context, filter models.ResourceStockFilter, orderBy string, limit, offset int) ([]*models.ResourceStock, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var stocks []*models.ResourceStock
	if err := query.Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// Count returns the number of stock records matching the filter
func (r *ResourceStockRepositoryImpl) Count(ctx context.Context, filter models.ResourceStockFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.ResourceStock{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any stock record matches the filter
func (r *ResourceStockRepositoryImpl) Exists(ctx context.Context, filter models.ResourceStockFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ResourceStockRepositoryImpl) applyFilter(db *gorm.DB, filter models.ResourceStockFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.ResourceID != nil {
		db = db.Where("resource_id = ?", *filter.ResourceID)
	}
	if filter.Kind != nil {
		db = db.Where("kind = ?", *filter.Kind)
	}
	if filter.Category != nil {
		db = db.Where("category = ?", *filter.Category)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	if filter.OwnedBy != nil {
		db = db.Where("owned_by = ?", *filter.OwnedBy)
	}
	return db
}
