package server

import "time"

// HealthStatus values
const (
	Healthy = "healthy"
)

// Error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeMissingFile        = "MISSING_FILE"
	CodeInvalidImageFormat = "INVALID_IMAGE_FORMAT"
	CodeWatermarkTooLarge  = "WATERMARK_TOO_LARGE"
	CodeInvalidParameter   = "INVALID_PARAMETER"
	CodeTimeout            = "TIMEOUT"
	CodeInternal           = "INTERNAL_ERROR"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    *int      `json:"uptime,omitempty"`
	Version   *string   `json:"version,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string  `json:"error"`
	Message   string  `json:"message"`
	RequestId *string `json:"request_id,omitempty"`
}
