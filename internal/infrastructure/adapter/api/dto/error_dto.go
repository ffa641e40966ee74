package dto

// ErrorResponse represents a standardized error response for the API
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse builds an error response with Success pinned to false
func NewErrorResponse(code int, message string) ErrorResponse {
	return ErrorResponse{Success: false, Code: code, Message: message}
}
