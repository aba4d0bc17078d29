package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/utils"
	"gorm.io/gorm"
)

// TaskRepositoryImpl implements TaskRepository
type TaskRepositoryImpl struct {
	*BaseRepository[models.Task, models.TaskFilter]
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &TaskRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Task, models.TaskFilter](db),
	}
}

// ByTaskID finds a task by its minted display id
func (r *TaskRepositoryImpl) ByTaskID(ctx context.Context, taskID int64) (*models.Task, error) {
	db := r.getDB(ctx)
	var task models.Task
	err := db.Preload("Subtasks").Where("task_id = ?", taskID).Last(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// ListByProject returns tasks of a project, newest first
func (r *TaskRepositoryImpl) ListByProject(ctx context.Context, projectID uint, limit, offset int) ([]*models.Task, error) {
	db := r.getDB(ctx)
	var tasks []*models.Task
	query := db.Where("project_id = ?", projectID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByTeam returns tasks assigned to a team, newest first
func (r *TaskRepositoryImpl) ListByTeam(ctx context.Context, teamID uint, limit, offset int) ([]*models.Task, error) {
	db := r.getDB(ctx)
	var tasks []*models.Task
	query := db.Where("team_id = ?", teamID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateStatus transitions a task's lifecycle state
func (r *TaskRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status models.TaskStatus, completedAt *time.Time) error {
	db, ownsTx, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { finishWrite(db, ownsTx, err) }()

	updates := map[string]any{"status": status, "updated_at": utils.UTCNow()}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}

	err = db.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error
	return err
}

// SaveSubtask inserts a new subtask
func (r *TaskRepositoryImpl) SaveSubtask(ctx context.Context, subtask *models.Subtask) error {
	db, ownsTx, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { finishWrite(db, ownsTx, err) }()

	err = db.Create(subtask).Error
	return err
}

// ListSubtasks returns the subtasks of a task in creation order
func (r *TaskRepositoryImpl) ListSubtasks(ctx context.Context, taskID uint) ([]*models.Subtask, error) {
	db := r.getDB(ctx)
	var subtasks []*models.Subtask
	err := db.Where("task_id = ?", taskID).Order("id ASC").Find(&subtasks).Error
	if err != nil {
		return nil, err
	}
	return subtasks, nil
}

// UpdateSubtaskStatus transitions a subtask's state
func (r *TaskRepositoryImpl) UpdateSubtaskStatus(ctx context.Context, subtaskID uint, status models.TaskStatus, completedAt *time.Time) error {
	db, ownsTx, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer func() { finishWrite(db, ownsTx, err) }()

	updates := map[string]any{"status": status, "updated_at": utils.UTCNow()}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}

	err = db.Model(&models.Subtask{}).Where("id = ?", subtaskID).Updates(updates).Error
	return err
}

// ByFilter retrieves tasks matching the filter criteria
func (r *TaskRepositoryImpl) ByFilter(ctx context.Context, filter models.TaskFilter, orderBy string, limit, offset int) ([]*models.Task, error) {
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
	var tasks []*models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Count returns the number of tasks matching the filter
func (r *TaskRepositoryImpl) Count(ctx context.Context, filter models.TaskFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.Task{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any task matches the filter
func (r *TaskRepositoryImpl) Exists(ctx context.Context, filter models.TaskFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *TaskRepositoryImpl) applyFilter(db *gorm.DB, filter models.TaskFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.TaskID != nil {
		db = db.Where("task_id = ?", *filter.TaskID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.ProjectID != nil {
		db = db.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.TeamID != nil {
		db = db.Where("team_id = ?", *filter.TeamID)
	}
	return db
}
