package dto

// APIResponse is the envelope every endpoint returns. Data carries the
// payload on success, Error the detail on failure; never both.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty" validate:"omitempty"`
	Error   any    `json:"error,omitempty" validate:"omitempty"`
}

// ErrorDetail pairs a stable machine-readable code with optional context,
// such as per-field validation messages.
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty" validate:"omitempty"`
}
