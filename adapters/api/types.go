package api

import (
	"fmt"
	"time"
)

// ResponseError is a non-200 answer from the upstream service.
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("weather service returned status %d: %s", e.StatusCode, e.Body)
}

// FetchStats describes the last successful fetch.
type FetchStats struct {
	URL          string        `json:"url"`
	Readings     int           `json:"readings"`
	Skipped      int           `json:"skipped"`
	ResponseTime time.Duration `json:"response_time"`
	FetchedAt    time.Time     `json:"fetched_at"`
}
