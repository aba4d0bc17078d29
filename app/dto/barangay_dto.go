package dto

// CreateBarangayRequest represents the request to register a barangay
type CreateBarangayRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=150" example:"San Isidro"`
	Municipality string `json:"municipality" validate:"required,min=2,max=150" example:"Santa Maria"`
	Province     string `json:"province" validate:"required,min=2,max=150" example:"Bulacan"`
}

// UpdateBarangayRequest represents the request to rename a barangay
type UpdateBarangayRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=150" example:"San Isidro"`
	Municipality *string `json:"municipality" validate:"omitempty,min=2,max=150" example:"Santa Maria"`
	Province     *string `json:"province" validate:"omitempty,min=2,max=150" example:"Bulacan"`
}

// BarangayDTO represents a barangay in API responses
type BarangayDTO struct {
	BarangayID   int64  `json:"barangay_id" example:"4"`
	UUID         string `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name         string `json:"name" example:"San Isidro"`
	Municipality string `json:"municipality" example:"Santa Maria"`
	Province     string `json:"province" example:"Bulacan"`
	CreatedAt    string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// ListBarangaysResponse wraps a page of barangays
type ListBarangaysResponse struct {
	Items []BarangayDTO `json:"items"`
	Total int64         `json:"total" example:"7"`
}

// Common error codes for barangay operations
const (
	ErrorBarangayNotFound   = "BARANGAY_NOT_FOUND"
	ErrorBarangayNameTaken  = "BARANGAY_NAME_TAKEN"
	ErrorBarangayReferenced = "BARANGAY_REFERENCED"
)
