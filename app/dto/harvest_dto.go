package dto

import "time"

// RecordHarvestRequest logs harvested produce against a project
type RecordHarvestRequest struct {
	ProjectID   int64     `json:"project_id" validate:"required,gt=0" example:"12"`
	TeamID      *int64    `json:"team_id" validate:"omitempty,gt=0" example:"5"`
	Quantity    float64   `json:"quantity" validate:"required,gt=0" example:"850"`
	Unit        string    `json:"unit" validate:"required,min=1,max=20" example:"kg"`
	HarvestDate time.Time `json:"harvest_date" validate:"required" example:"2024-10-20T00:00:00Z"`
}

// HarvestDTO represents a harvest record in API responses
type HarvestDTO struct {
	HarvestID   int64     `json:"harvest_id" example:"9"`
	UUID        string    `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	ProjectID   uint      `json:"project_id" example:"12"`
	TeamID      *uint     `json:"team_id,omitempty" example:"5"`
	CropName    string    `json:"crop_name" example:"Rice"`
	Quantity    float64   `json:"quantity" example:"850"`
	Unit        string    `json:"unit" example:"kg"`
	HarvestDate time.Time `json:"harvest_date" example:"2024-10-20T00:00:00Z"`
	RecordedBy  uint      `json:"recorded_by" example:"15"`
}

// ListHarvestsResponse wraps a page of harvest records
type ListHarvestsResponse struct {
	Items []HarvestDTO `json:"items"`
	Total int64        `json:"total" example:"4"`
}

// HarvestSummaryResponse aggregates harvested quantity for a crop
type HarvestSummaryResponse struct {
	CropName string  `json:"crop_name" example:"Rice"`
	Total    float64 `json:"total" example:"3200"`
	Unit     string  `json:"unit" example:"kg"`
}

// Common error codes for harvest operations
const (
	ErrorHarvestNotFound = "HARVEST_NOT_FOUND"
)
