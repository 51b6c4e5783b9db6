package api

import (
	"fmt"
	"time"
)

// Units of the temperatures returned by the upstream service.
const (
	Fahrenheit = "F"
	Celsius    = "C"
)

// WeatherSourceConfig describes an upstream daily-weather endpoint.
type WeatherSourceConfig struct {
	BaseURL string            `json:"base_url"`
	Headers map[string]string `json:"headers,omitempty"`

	AuthMethod string `json:"auth_method,omitempty"` // bearer, api_key or empty
	AuthToken  string `json:"-"`

	Timeout   time.Duration `json:"timeout"`
	RateLimit int           `json:"rate_limit"` // requests per minute

	// DataPath is the gjson path of the reading array in the response body.
	DataPath string   `json:"data_path"`
	Fields   FieldMap `json:"fields"`
	Units    string   `json:"units"`
}

// FieldMap names the per-reading fields, as gjson paths relative to one element.
type FieldMap struct {
	Date        string `json:"date"`
	DateLayout  string `json:"date_layout"`
	TMax        string `json:"tmax"`
	TMin        string `json:"tmin"`
	WaterStress string `json:"water_stress,omitempty"`
}

// DefaultWeatherSourceConfig returns defaults for a service that answers
// {"readings":[{"date":"2025-05-01","tmax_f":81,"tmin_f":55}]}.
func DefaultWeatherSourceConfig(baseURL string) *WeatherSourceConfig {
	return &WeatherSourceConfig{
		BaseURL:   baseURL,
		Timeout:   30 * time.Second,
		RateLimit: 60,
		DataPath:  "readings",
		Fields: FieldMap{
			Date:        "date",
			DateLayout:  time.DateOnly,
			TMax:        "tmax_f",
			TMin:        "tmin_f",
			WaterStress: "water_stress",
		},
		Units: Fahrenheit,
	}
}

// Validate checks if the configuration is usable
func (c *WeatherSourceConfig) Validate() error {
	if c.BaseURL == "" {
		return &ValidationError{Field: "BaseURL", Message: "is required"}
	}
	if c.Timeout <= 0 {
		return &ValidationError{Field: "Timeout", Message: "must be positive"}
	}
	if c.RateLimit <= 0 {
		return &ValidationError{Field: "RateLimit", Message: "must be positive"}
	}
	if c.Fields.Date == "" || c.Fields.TMax == "" || c.Fields.TMin == "" {
		return &ValidationError{Field: "Fields", Message: "date, tmax and tmin paths are required"}
	}
	switch c.Units {
	case Fahrenheit, Celsius:
	default:
		return &ValidationError{Field: "Units", Message: fmt.Sprintf("unsupported units %q", c.Units)}
	}
	switch c.AuthMethod {
	case "", "bearer", "api_key":
	default:
		return &ValidationError{Field: "AuthMethod", Message: fmt.Sprintf("unsupported method %q", c.AuthMethod)}
	}
	return nil
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}
