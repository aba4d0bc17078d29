// Package dto contains Data Transfer Objects for API request and response structures
package dto

import "time"

// RegisterResourceRequest creates a stock record for a resource not yet tracked
type RegisterResourceRequest struct {
	Kind     string  `json:"kind" validate:"required,oneof=crop fertilizer equipment" example:"fertilizer"`
	Category string  `json:"category" validate:"required,min=1,max=100" example:"Nitrogen"`
	Name     string  `json:"name" validate:"required,min=1,max=150" example:"Urea 46-0-0"`
	OwnedBy  string  `json:"owned_by" validate:"required,min=1,max=100" example:"Admin"`
	Quantity float64 `json:"quantity" validate:"gte=0" example:"100"`
	Unit     string  `json:"unit" validate:"required,min=1,max=20" example:"kg"`
}

// ReplenishStockRequest adds quantity to an existing stock record. Category
// and Name, when set, correct the descriptive metadata of the record.
type ReplenishStockRequest struct {
	Kind       string  `json:"kind" validate:"required,oneof=crop fertilizer equipment" example:"fertilizer"`
	ResourceID int64   `json:"resource_id" validate:"required,gt=0" example:"7"`
	Quantity   float64 `json:"quantity" validate:"required,gt=0" example:"50"`
	Unit       string  `json:"unit" validate:"omitempty,min=1,max=20" example:"kg"`
	Category   string  `json:"category" validate:"omitempty,min=1,max=100" example:"Nitrogen"`
	Name       string  `json:"name" validate:"omitempty,min=1,max=150" example:"Urea 46-0-0"`
}

// ConsumeStockRequest deducts quantity from a stock record and appends a usage log
type ConsumeStockRequest struct {
	Kind       string  `json:"kind" validate:"required,oneof=crop fertilizer equipment" example:"fertilizer"`
	ResourceID int64   `json:"resource_id" validate:"required,gt=0" example:"7"`
	Quantity   float64 `json:"quantity" validate:"required,gt=0" example:"20"`
	Status     string  `json:"status" validate:"required,oneof=Used Damaged Missing" example:"Used"`
	Details    string  `json:"details" validate:"omitempty,max=500" example:"Bag torn during transport"`
}

// ResourceStockDTO represents a stock record in API responses
type ResourceStockDTO struct {
	ResourceID   int64     `json:"resource_id" example:"7"`
	UUID         string    `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Kind         string    `json:"kind" example:"fertilizer"`
	Category     string    `json:"category" example:"Nitrogen"`
	Name         string    `json:"name" example:"Urea 46-0-0"`
	OwnedBy      string    `json:"owned_by" example:"Admin"`
	CurrentStock float64   `json:"current_stock" example:"130"`
	Unit         string    `json:"unit" example:"kg"`
	StockDate    time.Time `json:"stock_date" example:"2024-01-15T10:30:00Z"`
}

// UsageLogDTO represents an immutable usage log entry in API responses
type UsageLogDTO struct {
	LogID        int64     `json:"log_id" example:"42"`
	ResourceName string    `json:"resource_name" example:"Urea 46-0-0"`
	Kind         string    `json:"kind" example:"fertilizer"`
	Quantity     float64   `json:"quantity" example:"20"`
	Unit         string    `json:"unit" example:"kg"`
	Status       string    `json:"status" example:"Used"`
	Details      string    `json:"details,omitempty" example:"Bag torn during transport"`
	ActorName    string    `json:"actor_name" example:"Juan Dela Cruz"`
	ProjectID    string    `json:"project_id" example:"12"`
	Timestamp    time.Time `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

// RegisterResourceResponse is returned after a new resource is registered
type RegisterResourceResponse struct {
	Message string           `json:"message" example:"Resource registered"`
	Stock   ResourceStockDTO `json:"stock"`
}

// ReplenishStockResponse is returned after a successful replenishment
type ReplenishStockResponse struct {
	Message  string           `json:"message" example:"Stock replenished"`
	Stock    ResourceStockDTO `json:"stock"`
	Previous float64          `json:"previous_stock" example:"80"`
}

// ConsumeStockResponse is returned after a successful consumption
type ConsumeStockResponse struct {
	Message  string           `json:"message" example:"Stock updated"`
	Stock    ResourceStockDTO `json:"stock"`
	UsageLog UsageLogDTO      `json:"usage_log"`
}

// ListStockResponse is the owner partition of stock records
type ListStockResponse struct {
	Items []ResourceStockDTO `json:"items"`
	Total int64              `json:"total" example:"12"`
}

// GetStockResponse wraps a single stock record
type GetStockResponse struct {
	Stock ResourceStockDTO `json:"stock"`
}

// ListUsageLogsResponse wraps a page of usage log entries
type ListUsageLogsResponse struct {
	Items []UsageLogDTO `json:"items"`
	Total int64         `json:"total" example:"42"`
}

// Common error codes for inventory operations
const (
	ErrorResourceNotFound  = "RESOURCE_NOT_FOUND"
	ErrorInvalidQuantity   = "INVALID_QUANTITY"
	ErrorInsufficientStock = "INSUFFICIENT_STOCK"
	ErrorMissingDetails    = "MISSING_DETAILS"
	ErrorDuplicateResource = "DUPLICATE_RESOURCE"
)
