package dto

import "time"

// SubmitFeedbackRequest lets a farmer raise an issue on a task
type SubmitFeedbackRequest struct {
	TaskID  int64  `json:"task_id" validate:"required,gt=0" example:"20"`
	Content string `json:"content" validate:"required,min=3,max=1000" example:"Irrigation pump keeps stalling"`
}

// FeedbackDTO represents a feedback entry in API responses
type FeedbackDTO struct {
	FeedbackID     int64      `json:"feedback_id" example:"3"`
	UUID           string     `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	TaskID         uint       `json:"task_id" example:"20"`
	FarmerID       uint       `json:"farmer_id" example:"16"`
	Content        string     `json:"content" example:"Irrigation pump keeps stalling"`
	Status         string     `json:"status" example:"Pending"`
	AcknowledgedBy *uint      `json:"acknowledged_by,omitempty" example:"2"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty" example:"2024-06-11T08:00:00Z"`
	CreatedAt      string     `json:"created_at" example:"2024-06-10T15:00:00Z"`
}

// ListFeedbackResponse wraps a page of feedback entries
type ListFeedbackResponse struct {
	Items []FeedbackDTO `json:"items"`
	Total int64         `json:"total" example:"6"`
}

// Common error codes for feedback operations
const (
	ErrorFeedbackNotFound            = "FEEDBACK_NOT_FOUND"
	ErrorFeedbackAlreadyAcknowledged = "FEEDBACK_ALREADY_ACKNOWLEDGED"
)
