package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/utils"
	"gorm.io/gorm"
)

// ProjectRepositoryImpl implements ProjectRepository
type ProjectRepositoryImpl struct {
	*BaseRepository[models.Project, models.ProjectFilter]
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &ProjectRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Project, models.ProjectFilter](db),
	}
}

// ByProjectID finds a project by its minted display id
func (r *ProjectRepositoryImpl) ByProjectID(ctx context.Context, projectID int64) (*models.Project, error) {
	db := r.getDB(ctx)
	var project models.Project
	err := db.Where("project_id = ?", projectID).Last(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// ListByBarangay returns projects of a barangay, newest first
func (r *ProjectRepositoryImpl) ListByBarangay(ctx context.Context, barangayID uint, limit, offset int) ([]*models.Project, error) {
	db := r.getDB(ctx)
	var projects []*models.Project
	query := db.Where("barangay_id = ?", barangayID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListByLeadFarmer returns projects led by a user
func (r *ProjectRepositoryImpl) ListByLeadFarmer(ctx context.Context, leadFarmerID uint) ([]*models.Project, error) {
	db := r.getDB(ctx)
	var projects []*models.Project
	err := db.Where("lead_farmer_id = ?", leadFarmerID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// UpdateStatus transitions a project's lifecycle state
func (r *ProjectRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status models.ProjectStatus, endDate *time.Time) error {
	db, ownsTx, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { finishWrite(db, ownsTx, err) }()

	updates := map[string]any{"status": status, "updated_at": utils.UTCNow()}
	if endDate != nil {
		updates["end_date"] = *endDate
	}

	err = db.Model(&models.Project{}).Where("id = ?", id).Updates(updates).Error
	return err
}

// ByFilter retrieves projects matching the filter criteria
func (r *ProjectRepositoryImpl) ByFilter(ctx context.Context, filter models.ProjectFilter, orderBy string, limit, offset int) ([]*models.Project, error) {
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
	var projects []*models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Count returns the number of projects matching the filter
func (r *ProjectRepositoryImpl) Count(ctx context.Context, filter models.ProjectFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.Project{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any project matches the filter
func (r *ProjectRepositoryImpl) Exists(ctx context.Context, filter models.ProjectFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ProjectRepositoryImpl) applyFilter(db *gorm.DB, filter models.ProjectFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.ProjectID != nil {
		db = db.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.BarangayID != nil {
		db = db.Where("barangay_id = ?", *filter.BarangayID)
	}
	if filter.LeadFarmerID != nil {
		db = db.Where("lead_farmer_id = ?", *filter.LeadFarmerID)
	}
	if filter.CropName != nil {
		db = db.Where("crop_name = ?", *filter.CropName)
	}
	return db
}
