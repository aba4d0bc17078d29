package dto

import "time"

// RecordAttendanceRequest marks a farmer present or absent for a task day
type RecordAttendanceRequest struct {
	TaskID   int64     `json:"task_id" validate:"required,gt=0" example:"20"`
	FarmerID uint      `json:"farmer_id" validate:"required,gt=0" example:"16"`
	Date     time.Time `json:"date" validate:"required" example:"2024-06-10T00:00:00Z"`
	Present  bool      `json:"present" example:"true"`
	Remarks  string    `json:"remarks" validate:"omitempty,max=300" example:"Arrived late"`
}

// AttendanceDTO represents an attendance entry in API responses
type AttendanceDTO struct {
	ID         uint      `json:"id" example:"55"`
	TaskID     uint      `json:"task_id" example:"20"`
	FarmerID   uint      `json:"farmer_id" example:"16"`
	Date       time.Time `json:"date" example:"2024-06-10T00:00:00Z"`
	Present    bool      `json:"present" example:"true"`
	Remarks    string    `json:"remarks,omitempty" example:"Arrived late"`
	RecordedBy uint      `json:"recorded_by" example:"15"`
}

// ListAttendanceResponse wraps a page of attendance entries
type ListAttendanceResponse struct {
	Items []AttendanceDTO `json:"items"`
	Total int64           `json:"total" example:"14"`
}

// Common error codes for attendance operations
const (
	ErrorAttendanceNotFound = "ATTENDANCE_NOT_FOUND"
)
