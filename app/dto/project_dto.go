package dto

import "time"

// CreateProjectRequest represents the request to open a farming project
type CreateProjectRequest struct {
	Title        string     `json:"title" validate:"required,min=3,max=200" example:"Wet Season Rice 2024"`
	CropName     string     `json:"crop_name" validate:"required,min=2,max=100" example:"Rice"`
	BarangayID   int64      `json:"barangay_id" validate:"required,gt=0" example:"4"`
	LeadFarmerID uint       `json:"lead_farmer_id" validate:"required,gt=0" example:"15"`
	StartDate    time.Time  `json:"start_date" validate:"required" example:"2024-06-01T00:00:00Z"`
	EndDate      *time.Time `json:"end_date" validate:"omitempty" example:"2024-10-30T00:00:00Z"`
}

// UpdateProjectStatusRequest transitions a project's lifecycle state
type UpdateProjectStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Ongoing Completed Cancelled" example:"Completed"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ProjectID    int64      `json:"project_id" example:"12"`
	UUID         string     `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Title        string     `json:"title" example:"Wet Season Rice 2024"`
	Status       string     `json:"status" example:"Ongoing"`
	CropName     string     `json:"crop_name" example:"Rice"`
	BarangayID   uint       `json:"barangay_id" example:"4"`
	LeadFarmerID uint       `json:"lead_farmer_id" example:"15"`
	StartDate    time.Time  `json:"start_date" example:"2024-06-01T00:00:00Z"`
	EndDate      *time.Time `json:"end_date,omitempty" example:"2024-10-30T00:00:00Z"`
	CreatedAt    string     `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// ListProjectsResponse wraps a page of projects
type ListProjectsResponse struct {
	Items []ProjectDTO `json:"items"`
	Total int64        `json:"total" example:"3"`
}

// Common error codes for project operations
const (
	ErrorProjectNotFound      = "PROJECT_NOT_FOUND"
	ErrorProjectClosed        = "PROJECT_CLOSED"
	ErrorInvalidProjectStatus = "INVALID_PROJECT_STATUS"
)
