package repository

import (
	"context"
	"errors"

	"github.com/Zarcastral/farmops/models"
	"gorm.io/gorm"
)

// UserRoleRepositoryImpl implements UserRoleRepository
type UserRoleRepositoryImpl struct {
	*BaseRepository[models.UserRole, models.UserRoleFilter]
}

// NewUserRoleRepository creates a new user role repository
func NewUserRoleRepository(db *gorm.DB) UserRoleRepository {
	return &UserRoleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.UserRole, models.UserRoleFilter](db),
	}
}

// ByRoleName finds a role by its unique name
func (r *UserRoleRepositoryImpl) ByRoleName(ctx context.Context, roleName string) (*models.UserRole, error) {
	db := r.getDB(ctx)
	var role models.UserRole
	err := db.Where("role_name = ?", roleName).Last(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// ByFilter retrieves roles matching the filter criteria
func (r *UserRoleRepositoryImpl) ByFilter(ctx context.Context, filter models.UserRoleFilter, orderBy string, limit, offset int) ([]*models.UserRole, error) {
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
	var roles []*models.UserRole
	if err := query.Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Count returns the number of roles matching the filter
func (r *UserRoleRepositoryImpl) Count(ctx context.Context, filter models.UserRoleFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.UserRole{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any role matches the filter
func (r *UserRoleRepositoryImpl) Exists(ctx context.Context, filter models.UserRoleFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRoleRepositoryImpl) applyFilter(db *gorm.DB, filter models.UserRoleFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.RoleName != nil {
		db = db.Where("role_name = ?", *filter.RoleName)
	}
	return db
}
