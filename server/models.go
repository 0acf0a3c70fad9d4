package server

import "time"

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Countries int    `json:"countries"`
}

// CountriesResponse lists the selectable countries
type CountriesResponse struct {
	Countries []string `json:"countries"`
}

// SeriesResponse is one country's historical series
type SeriesResponse struct {
	Country string      `json:"country"`
	T       []time.Time `json:"time"`
	Y       []float64   `json:"values"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}
