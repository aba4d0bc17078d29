package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zarcastral/farmops/models"
	"gorm.io/gorm"
)

// BarangayRepositoryImpl implements BarangayRepository
type BarangayRepositoryImpl struct {
	*BaseRepository[models.Barangay, models.BarangayFilter]
}

// NewBarangayRepository creates a new barangay repository
func NewBarangayRepository(db *gorm.DB) BarangayRepository {
	return &BarangayRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Barangay, models.BarangayFilter](db),
	}
}

// ByBarangayID finds a barangay by its minted display id
func (r *BarangayRepositoryImpl) ByBarangayID(ctx context.Context, barangayID int64) (*models.Barangay, error) {
	db := r.getDB(ctx)
	var barangay models.Barangay
	err := db.Where("barangay_id = ?", barangayID).Last(&barangay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &barangay, nil
}

// ByName finds a barangay by its unique name
func (r *BarangayRepositoryImpl) ByName(ctx context.Context, name string) (*models.Barangay, error) {
	db := r.getDB(ctx)
	var barangay models.Barangay
	err := db.Where("name = ?", name).Last(&barangay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &barangay, nil
}

// List returns barangays ordered by name
func (r *BarangayRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*models.Barangay, error) {
	db := r.getDB(ctx)
	var barangays []*models.Barangay
	query := db.Order("name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&barangays).Error; err != nil {
		return nil, err
	}
	return barangays, nil
}

// CountReferences counts users and projects still referencing the barangay.
// Deletion is refused while this is non-zero.
func (r *BarangayRepositoryImpl) CountReferences(ctx context.Context, id uint) (int64, error) {
	db := r.getDB(ctx)

	var userCount int64
	if err := db.Model(&models.User{}).Where("barangay_id = ?", id).Count(&userCount).Error; err != nil {
		return 0, fmt.Errorf("failed to count user references: %w", err)
	}

	var projectCount int64
	if err := db.Model(&models.Project{}).Where("barangay_id = ?", id).Count(&projectCount).Error; err != nil {
		return 0, fmt.Errorf("failed to count project references: %w", err)
	}

	return userCount + projectCount, nil
}

// Delete soft-deletes a barangay
func (r *BarangayRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db, ownsTx, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { finishWrite(db, ownsTx, err) }()

	err = db.Delete(&models.Barangay{}, id).Error
	return err
}

// ByFilter retrieves barangays matching the filter criteria
func (r *BarangayRepositoryImpl) ByFilter(ctx context.Context, filter models.BarangayFilter, orderBy string, limit, offset int) ([]*models.Barangay, error) {
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
	var barangays []*models.Barangay
	if err := query.Find(&barangays).Error; err != nil {
		return nil, err
	}
	return barangays, nil
}

// Count returns the number of barangays matching the filter
func (r *BarangayRepositoryImpl) Count(ctx context.Context, filter models.BarangayFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.Barangay{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any barangay matches the filter
func (r *BarangayRepositoryImpl) Exists(ctx context.Context, filter models.BarangayFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *BarangayRepositoryImpl) applyFilter(db *gorm.DB, filter models.BarangayFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.BarangayID != nil {
		db = db.Where("barangay_id = ?", *filter.BarangayID)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	if filter.Municipality != nil {
		db = db.Where("municipality = ?", *filter.Municipality)
	}
	return db
}
