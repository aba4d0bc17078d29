package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedbackStatus tracks whether a feedback entry has been acknowledged.
type FeedbackStatus string

const (
	FeedbackStatusPending      FeedbackStatus = "Pending"
	FeedbackStatusAcknowledged FeedbackStatus = "Acknowledged"
)

// Feedback is a farmer's note on a task, acknowledged by a supervisor or farm
// president. FeedbackID is minted from the feedback sequence.
type Feedback struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	FeedbackID int64     `gorm:"not null;uniqueIndex" json:"feedback_id"`

	TaskID   uint `gorm:"not null;index" json:"task_id"`
	Task     Task `json:"task,omitempty"`
	FarmerID uint `gorm:"not null;index" json:"farmer_id"`
	Farmer   User `gorm:"foreignKey:FarmerID;references:ID" json:"farmer,omitempty"`

	Content string         `gorm:"type:text;not null" json:"content"`
	Status  FeedbackStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`

	AcknowledgedBy *uint      `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Feedback) TableName() string { return "feedback" }

// BeforeCreate ensures UUID is set
func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.UUID == uuid.Nil {
		f.UUID = uuid.New()
	}
	return nil
}

// FeedbackFilter represents filter criteria for feedback queries
type FeedbackFilter struct {
	ID         *uint           `json:"id,omitempty"`
	FeedbackID *int64          `json:"feedback_id,omitempty"`
	TaskID     *uint           `json:"task_id,omitempty"`
	FarmerID   *uint           `json:"farmer_id,omitempty"`
	Status     *FeedbackStatus `json:"status,omitempty"`
}
