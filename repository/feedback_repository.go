package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/utils"
	"gorm.io/gorm"
)

// FeedbackRepositoryImpl implements FeedbackRepository
type FeedbackRepositoryImpl struct {
	*BaseRepository[models.Feedback, models.FeedbackFilter]
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &FeedbackRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Feedback, models.FeedbackFilter](db),
	}
}

// ByFeedbackID finds a feedback entry by its minted display id
func (r *FeedbackRepositoryImpl) ByFeedbackID(ctx context.Context, feedbackID int64) (*models.Feedback, error) {
	db := r.getDB(ctx)
	var feedback models.Feedback
	err := db.Where("feedback_id = ?", feedbackID).Last(&feedback).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &feedback, nil
}

// ListByTask returns feedback entries of a task, newest first
func (r *FeedbackRepositoryImpl) ListByTask(ctx context.Context, taskID uint, limit, offset int) ([]*models.Feedback, error) {
	db := r.getDB(ctx)
	query := db.Where("task_id = ?", taskID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var entries []*models.Feedback
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListPending returns unacknowledged feedback, oldest first
func (r *FeedbackRepositoryImpl) ListPending(ctx context.Context, limit, offset int) ([]*models.Feedback, error) {
	db := r.getDB(ctx)
	query := db.Where("status = ?", models.FeedbackStatusPending).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var entries []*models.Feedback
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Acknowledge marks a feedback entry as seen by a supervisor
func (r *FeedbackRepositoryImpl) Acknowledge(ctx context.Context, id uint, acknowledgedBy uint, at time.Time) error {
	db, ownsTx, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { finishWrite(db, ownsTx, err) }()

	err = db.Model(&models.Feedback{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          models.FeedbackStatusAcknowledged,
			"acknowledged_by": acknowledgedBy,
			"acknowledged_at": at,
			"updated_at":      utils.UTCNow(),
		}).Error
	return err
}

// ByFilter retrieves feedback entries matching the filter criteria
func (r *FeedbackRepositoryImpl) ByFilter(ctx context.Context, filter models.FeedbackFilter, orderBy string, limit, offset int) ([]*models.Feedback, error) {
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
	var entries []*models.Feedback
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of feedback entries matching the filter
func (r *FeedbackRepositoryImpl) Count(ctx context.Context, filter models.FeedbackFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.Feedback{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any feedback entry matches the filter
func (r *FeedbackRepositoryImpl) Exists(ctx context.Context, filter models.FeedbackFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *FeedbackRepositoryImpl) applyFilter(db *gorm.DB, filter models.FeedbackFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.FeedbackID != nil {
		db = db.Where("feedback_id = ?", *filter.FeedbackID)
	}
	if filter.TaskID != nil {
		db = db.Where("task_id = ?", *filter.TaskID)
	}
	if filter.FarmerID != nil {
		db = db.Where("farmer_id = ?", *filter.FarmerID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	return db
}
