package dto

// APIResponse represents the standard API response structure
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty" validate:"omitempty"`
	Error   any    `json:"error,omitempty" validate:"omitempty"`
}

// ErrorDetail represents error details in API responses
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty" validate:"omitempty"`
}

// FieldError is a structured (field-path, message) pair used by the review
// submission endpoint so clients can surface errors inline and jump to the
// wizard step owning the first failing field
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}
