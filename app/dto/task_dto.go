package dto

import "time"

// CreateTaskRequest represents the request to assign work under a project
type CreateTaskRequest struct {
	TaskName  string     `json:"task_name" validate:"required,min=2,max=200" example:"Land preparation"`
	ProjectID int64      `json:"project_id" validate:"required,gt=0" example:"12"`
	TeamID    *int64     `json:"team_id" validate:"omitempty,gt=0" example:"5"`
	DueDate   *time.Time `json:"due_date" validate:"omitempty" example:"2024-06-15T00:00:00Z"`
	Subtasks  []string   `json:"subtasks" validate:"omitempty,dive,min=1,max=200" example:"Plowing,Harrowing"`
}

// UpdateTaskStatusRequest transitions a task's lifecycle state
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Ongoing Completed" example:"Completed"`
}

// SubtaskDTO represents a subtask in API responses
type SubtaskDTO struct {
	ID          uint       `json:"id" example:"31"`
	Name        string     `json:"name" example:"Plowing"`
	Status      string     `json:"status" example:"Pending"`
	CompletedAt *time.Time `json:"completed_at,omitempty" example:"2024-06-10T09:00:00Z"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	TaskID      int64        `json:"task_id" example:"20"`
	UUID        string       `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	TaskName    string       `json:"task_name" example:"Land preparation"`
	Status      string       `json:"status" example:"Ongoing"`
	ProjectID   uint         `json:"project_id" example:"12"`
	TeamID      *uint        `json:"team_id,omitempty" example:"5"`
	DueDate     *time.Time   `json:"due_date,omitempty" example:"2024-06-15T00:00:00Z"`
	CompletedAt *time.Time   `json:"completed_at,omitempty" example:"2024-06-14T17:00:00Z"`
	Subtasks    []SubtaskDTO `json:"subtasks,omitempty"`
	CreatedAt   string       `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// ListTasksResponse wraps a page of tasks
type ListTasksResponse struct {
	Items []TaskDTO `json:"items"`
	Total int64     `json:"total" example:"8"`
}

// Common error codes for task operations
const (
	ErrorTaskNotFound      = "TASK_NOT_FOUND"
	ErrorSubtaskNotFound   = "SUBTASK_NOT_FOUND"
	ErrorInvalidTaskStatus = "INVALID_TASK_STATUS"
)
