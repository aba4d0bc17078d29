// Package businessflow contains the core business logic and use cases for farm operations workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/Zarcastral/farmops/app/dto"
	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/repository"
	"github.com/Zarcastral/farmops/utils"
	"gorm.io/gorm"
)

// TaskFlow handles task assignment and lifecycle under ongoing projects
type TaskFlow interface {
	Create(ctx context.Context, request *dto.CreateTaskRequest, actor *Actor, metadata *ClientMetadata) (*dto.TaskDTO, error)
	UpdateStatus(ctx context.Context, taskID int64, request *dto.UpdateTaskStatusRequest, actor *Actor, metadata *ClientMetadata) (*dto.TaskDTO, error)
	UpdateSubtaskStatus(ctx context.Context, taskID int64, subtaskID uint, request *dto.UpdateTaskStatusRequest, actor *Actor, metadata *ClientMetadata) (*dto.TaskDTO, error)
	Get(ctx context.Context, taskID int64) (*dto.TaskDTO, error)
	ListByProject(ctx context.Context, projectID int64, limit, offset int) (*dto.ListTasksResponse, error)
}

// TaskFlowImpl implements the task business flow
type TaskFlowImpl struct {
	taskRepo     repository.TaskRepository
	projectRepo  repository.ProjectRepository
	teamRepo     repository.TeamRepository
	seqRepo      repository.SequenceCounterRepository
	activityRepo repository.ActivityLogRepository
	db           *gorm.DB
}

// NewTaskFlow creates a new task flow instance
func NewTaskFlow(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	teamRepo repository.TeamRepository,
	seqRepo repository.SequenceCounterRepository,
	activityRepo repository.ActivityLogRepository,
	db *gorm.DB,
) TaskFlow {
	return &TaskFlowImpl{
		taskRepo:     taskRepo,
		projectRepo:  projectRepo,
		teamRepo:     teamRepo,
		seqRepo:      seqRepo,
		activityRepo: activityRepo,
		db:           db,
	}
}

// Create assigns work under an ongoing project, minting the task display id
// and creating any initial subtasks.
func (f *TaskFlowImpl) Create(ctx context.Context, request *dto.CreateTaskRequest, actor *Actor, metadata *ClientMetadata) (*dto.TaskDTO, error) {
	if !actor.CanManageInventory() {
		return nil, NewBusinessError("ACCESS_DENIED", "Role may not assign tasks", ErrAccessDenied)
	}

	var task *models.Task

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		project, err := f.projectRepo.ByProjectID(ctx, request.ProjectID)
		if err != nil {
			return err
		}
		if project == nil {
			return ErrProjectNotFound
		}
		if !project.IsOpen() {
			return ErrProjectClosed
		}

		var teamPK *uint
		if request.TeamID != nil {
			team, err := f.teamRepo.ByTeamID(ctx, *request.TeamID)
			if err != nil {
				return err
			}
			if team == nil {
				return ErrTeamNotFound
			}
			teamPK = &team.ID
		}

		taskID, err := f.seqRepo.Next(ctx, utils.SeqTasks)
		if err != nil {
			return err
		}

		task = &models.Task{
			TaskID:    taskID,
			TaskName:  request.TaskName,
			Status:    models.TaskStatusPending,
			ProjectID: project.ID,
			TeamID:    teamPK,
			DueDate:   request.DueDate,
		}
		if err := f.taskRepo.Save(ctx, task); err != nil {
			return err
		}

		for _, name := range request.Subtasks {
			subtask := &models.Subtask{
				TaskID: task.ID,
				Name:   name,
				Status: models.TaskStatusPending,
			}
			if err := f.taskRepo.SaveSubtask(ctx, subtask); err != nil {
				return err
			}
		}
		return nil
	})

	f.logOutcome(ctx, actor, models.ActivityActionTaskCreated,
		fmt.Sprintf("Assigned task %q under project %d", request.TaskName, request.ProjectID), err, metadata)

	if err != nil {
		return nil, NewBusinessError("CREATE_TASK_FAILED", "Failed to create task", err)
	}

	return f.Get(ctx, task.TaskID)
}

// UpdateStatus transitions a task. Completing a task stamps its completion
// time.
func (f *TaskFlowImpl) UpdateStatus(ctx context.Context, taskID int64, request *dto.UpdateTaskStatusRequest, actor *Actor, metadata *ClientMetadata) (*dto.TaskDTO, error) {
	status := models.TaskStatus(request.Status)
	switch status {
	case models.TaskStatusPending, models.TaskStatusOngoing, models.TaskStatusCompleted:
	default:
		return nil, NewBusinessError("INVALID_TASK_STATUS", "Invalid task status", ErrInvalidTaskStatus)
	}

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		task, err := f.taskRepo.ByTaskID(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return ErrTaskNotFound
		}

		var completedAt = task.CompletedAt
		if status == models.TaskStatusCompleted && completedAt == nil {
			completedAt = utils.UTCNowPtr()
		}

		return f.taskRepo.UpdateStatus(ctx, task.ID, status, completedAt)
	})

	f.logOutcome(ctx, actor, models.ActivityActionTaskUpdated,
		fmt.Sprintf("Task %d transitioned to %s", taskID, request.Status), err, metadata)

	if err != nil {
		return nil, NewBusinessError("UPDATE_TASK_FAILED", "Failed to update task", err)
	}

	return f.Get(ctx, taskID)
}

// UpdateSubtaskStatus transitions one checklist item under a task
func (f *TaskFlowImpl) UpdateSubtaskStatus(ctx context.Context, taskID int64, subtaskID uint, request *dto.UpdateTaskStatusRequest, actor *Actor, metadata *ClientMetadata) (*dto.TaskDTO, error) {
	status := models.TaskStatus(request.Status)
	switch status {
	case models.TaskStatusPending, models.TaskStatusOngoing, models.TaskStatusCompleted:
	default:
		return nil, NewBusinessError("INVALID_TASK_STATUS", "Invalid task status", ErrInvalidTaskStatus)
	}

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		task, err := f.taskRepo.ByTaskID(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return ErrTaskNotFound
		}

		subtasks, err := f.taskRepo.ListSubtasks(ctx, task.ID)
		if err != nil {
			return err
		}
		var target *models.Subtask
		for _, s := range subtasks {
			if s.ID == subtaskID {
				target = s
				break
			}
		}
		if target == nil {
			return ErrSubtaskNotFound
		}

		var completedAt = target.CompletedAt
		if status == models.TaskStatusCompleted && completedAt == nil {
			completedAt = utils.UTCNowPtr()
		}

		return f.taskRepo.UpdateSubtaskStatus(ctx, subtaskID, status, completedAt)
	})

	f.logOutcome(ctx, actor, models.ActivityActionTaskUpdated,
		fmt.Sprintf("Subtask %d of task %d transitioned to %s", subtaskID, taskID, request.Status), err, metadata)

	if err != nil {
		return nil, NewBusinessError("UPDATE_SUBTASK_FAILED", "Failed to update subtask", err)
	}

	return f.Get(ctx, taskID)
}

// Get returns a single task with its subtasks
func (f *TaskFlowImpl) Get(ctx context.Context, taskID int64) (*dto.TaskDTO, error) {
	task, err := f.taskRepo.ByTaskID(ctx, taskID)
	if err != nil {
		return nil, NewBusinessError("GET_TASK_FAILED", "Failed to load task", err)
	}
	if task == nil {
		return nil, NewBusinessError("TASK_NOT_FOUND", "Task not found", ErrTaskNotFound)
	}

	out := ToTaskDTO(*task)
	return &out, nil
}

// ListByProject returns tasks of a project, newest first
func (f *TaskFlowImpl) ListByProject(ctx context.Context, projectID int64, limit, offset int) (*dto.ListTasksResponse, error) {
	project, err := f.projectRepo.ByProjectID(ctx, projectID)
	if err != nil {
		return nil, NewBusinessError("LIST_TASKS_FAILED", "Failed to load project", err)
	}
	if project == nil {
		return nil, NewBusinessError("PROJECT_NOT_FOUND", "Project not found", ErrProjectNotFound)
	}

	tasks, err := f.taskRepo.ListByProject(ctx, project.ID, limit, offset)
	if err != nil {
		return nil, NewBusinessError("LIST_TASKS_FAILED", "Failed to list tasks", err)
	}
	total, err := f.taskRepo.Count(ctx, models.TaskFilter{ProjectID: &project.ID})
	if err != nil {
		return nil, NewBusinessError("LIST_TASKS_FAILED", "Failed to count tasks", err)
	}

	out := &dto.ListTasksResponse{Total: total}
	for _, t := range tasks {
		out.Items = append(out.Items, ToTaskDTO(*t))
	}
	return out, nil
}

func (f *TaskFlowImpl) logOutcome(ctx context.Context, actor *Actor, action, description string, opErr error, metadata *ClientMetadata) {
	if opErr != nil {
		errMsg := opErr.Error()
		_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, false, &errMsg, metadata)
		return
	}
	_ = logActivity(ctx, f.seqRepo, f.activityRepo, actor, action, description, true, nil, metadata)
}
