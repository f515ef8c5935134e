package responses

import (
	"time"

	"github.com/cn-address-parser/app/models"
)

// ParseAddressResponse wraps one parse result.
type ParseAddressResponse struct {
	Result           *models.AddressResult `json:"result"`
	GazetteerVersion string                `json:"gazetteer_version"`
	ProcessingTimeMs int64                 `json:"processing_time_ms"`
}

// BatchParseResponse wraps a synchronous batch.
type BatchParseResponse struct {
	Results          []*models.AddressResult `json:"results"`
	Total            int                     `json:"total"`
	GazetteerVersion string                  `json:"gazetteer_version"`
	ProcessingTimeMs int64                   `json:"processing_time_ms"`
}

// NormalizeResponse returns the canonical concatenation of the inputs.
type NormalizeResponse struct {
	Normalized       string `json:"normalized"`
	GazetteerVersion string `json:"gazetteer_version"`
}

// ValidateResponse reports whether an address resolves to known units.
type ValidateResponse struct {
	Valid            bool                 `json:"valid"`
	Parsed           models.ParsedAddress `json:"parsed"`
	GazetteerVersion string               `json:"gazetteer_version"`
}

// EnqueueJobResponse acknowledges an asynchronous batch.
type EnqueueJobResponse struct {
	JobID          string `json:"job_id"`
	TotalAddresses int    `json:"total_addresses"`
	Message        string `json:"message"`
}

// RegionListResponse carries gazetteer listings (provinces, cities,
// districts).
type RegionListResponse struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

// UnitSearchResponse carries search index hits.
type UnitSearchResponse struct {
	Units []models.AdminUnit `json:"units"`
	Total int                `json:"total"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewErrorResponse stamps an error body with the current time.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// HealthCheckResponse is the body of GET /health.
type HealthCheckResponse struct {
	Status           string            `json:"status"`
	Timestamp        string            `json:"timestamp"`
	GazetteerVersion string            `json:"gazetteer_version"`
	Services         map[string]string `json:"services,omitempty"`
}
