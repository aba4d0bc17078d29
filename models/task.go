package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus represents the lifecycle state of a project task or subtask.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusOngoing   TaskStatus = "Ongoing"
	TaskStatusCompleted TaskStatus = "Completed"
)

// Task is a unit of project work assigned to a team. TaskID is the external
// display identifier minted from the tasks sequence.
type Task struct {
	ID     uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	TaskID int64     `gorm:"not null;uniqueIndex" json:"task_id"`

	TaskName  string     `gorm:"size:160;not null" json:"task_name"`
	Status    TaskStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	ProjectID uint       `gorm:"not null;index" json:"project_id"`
	Project   Project    `json:"project,omitempty"`
	TeamID    *uint      `gorm:"index" json:"team_id,omitempty"`
	Team      *Team      `json:"team,omitempty"`

	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Subtasks []Subtask `gorm:"foreignKey:TaskID;references:ID" json:"subtasks,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Task) TableName() string { return "tasks" }

// BeforeCreate ensures UUID is set
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	return nil
}

// Subtask is a checklist item under a task.
type Subtask struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID      uint       `gorm:"not null;index" json:"task_id"`
	Name        string     `gorm:"size:160;not null" json:"name"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Subtask) TableName() string { return "subtasks" }

// TaskFilter represents filter criteria for task queries
type TaskFilter struct {
	ID        *uint       `json:"id,omitempty"`
	TaskID    *int64      `json:"task_id,omitempty"`
	Status    *TaskStatus `json:"status,omitempty"`
	ProjectID *uint       `json:"project_id,omitempty"`
	TeamID    *uint       `json:"team_id,omitempty"`
}
