package dto

// ActivityLogDTO represents an activity log entry in API responses
type ActivityLogDTO struct {
	LogID       int64  `json:"log_id" example:"101"`
	Username    string `json:"username" example:"juan.delacruz"`
	Role        string `json:"role" example:"farm_president"`
	Action      string `json:"action" example:"stock_consumed"`
	Description string `json:"description,omitempty" example:"Consumed 20 kg of Urea 46-0-0"`
	Success     *bool  `json:"success" example:"true"`
	Timestamp   string `json:"timestamp" example:"2024-06-10T15:00:00Z"`
}

// ListActivityLogsResponse wraps a page of activity log entries
type ListActivityLogsResponse struct {
	Items []ActivityLogDTO `json:"items"`
	Total int64            `json:"total" example:"250"`
}
