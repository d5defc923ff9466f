package dto

import "time"

// APIResponse is the standard response envelope for every endpoint. Exactly
// one of Data and Error is set.
type APIResponse struct {
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp" example:"2026-03-10T12:01:05.123Z"`
}

// NewAPIResponse creates a success envelope around the given payload
func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// DateLayout is the calendar date wire format used by every request DTO.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date in the wire format.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}
