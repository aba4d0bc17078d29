package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/utils"
	"gorm.io/gorm"
)

// AttendanceRepositoryImpl implements AttendanceRepository
type AttendanceRepositoryImpl struct {
	*BaseRepository[models.AttendanceRecord, models.AttendanceFilter]
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &AttendanceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AttendanceRecord, models.AttendanceFilter](db),
	}
}

// ByTaskFarmerDate finds the attendance entry for a farmer on a task and day
func (r *AttendanceRepositoryImpl) ByTaskFarmerDate(ctx context.Context, taskID, farmerID uint, date time.Time) (*models.AttendanceRecord, error) {
	db := r.getDB(ctx)
	var record models.AttendanceRecord
	err := db.Where("task_id = ? AND farmer_id = ? AND date = ?", taskID, farmerID, date.Format("2006-01-02")).
		Last(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListByTask returns the attendance sheet of a task, optionally for one day
func (r *AttendanceRepositoryImpl) ListByTask(ctx context.Context, taskID uint, date *time.Time) ([]*models.AttendanceRecord, error) {
	db := r.getDB(ctx)
	query := db.Where("task_id = ?", taskID)
	if date != nil {
		query = query.Where("date = ?", date.Format("2006-01-02"))
	}
	var records []*models.AttendanceRecord
	err := query.Order("date DESC, farmer_id ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListByFarmer returns a farmer's attendance history, newest first
func (r *AttendanceRepositoryImpl) ListByFarmer(ctx context.Context, farmerID uint, limit, offset int) ([]*models.AttendanceRecord, error) {
	db := r.getDB(ctx)
	query := db.Where("farmer_id = ?", farmerID).Order("date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var records []*models.AttendanceRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Update rewrites the mutable fields of an attendance entry
func (r *AttendanceRepositoryImpl) Update(ctx context.Context, record *models.AttendanceRecord) error {
	db, ownsTx, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { finishWrite(db, ownsTx, err) }()

	err = db.Model(&models.AttendanceRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"present":    record.Present,
			"remarks":    record.Remarks,
			"updated_at": utils.UTCNow(),
		}).Error
	return err
}

// ByFilter retrieves attendance entries matching the filter criteria
func (r *AttendanceRepositoryImpl) ByFilter(ctx context.Context, filter models.AttendanceFilter, orderBy string, limit, offset int) ([]*models.AttendanceRecord, error) {
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
	var records []*models.AttendanceRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the number of attendance entries matching the filter
func (r *AttendanceRepositoryImpl) Count(ctx context.Context, filter models.AttendanceFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.AttendanceRecord{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any attendance entry matches the filter
func (r *AttendanceRepositoryImpl) Exists(ctx context.Context, filter models.AttendanceFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AttendanceRepositoryImpl) applyFilter(db *gorm.DB, filter models.AttendanceFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.TaskID != nil {
		db = db.Where("task_id = ?", *filter.TaskID)
	}
	if filter.FarmerID != nil {
		db = db.Where("farmer_id = ?", *filter.FarmerID)
	}
	if filter.Date != nil {
		db = db.Where("date = ?", filter.Date.Format("2006-01-02"))
	}
	if filter.Present != nil {
		db = db.Where("present = ?", *filter.Present)
	}
	return db
}
