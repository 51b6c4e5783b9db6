package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gobrix/domain/produce"
	"gobrix/internal/calibration"
	"gobrix/internal/errors"
	"gobrix/internal/uncertainty"
)

// Database drivers understood by the commands.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the complete application configuration
type Config struct {
	Database    DatabaseConfig
	Server      ServerConfig
	Calibration calibration.Params
	Uncertainty UncertaintyConfig
	Tiers       produce.TierTable
	Cache       CacheConfig
	Reference   ReferenceConfig
	Batch       BatchConfig
	Weather     WeatherConfig
	LogLevel    string
}

// DatabaseConfig holds calibration store settings
type DatabaseConfig struct {
	Driver       string
	URL          string
	MaxOpenConns int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port      string
	AdminPort string
	GinMode   string
}

// UncertaintyConfig holds distribution settings
type UncertaintyConfig struct {
	Samples        int
	Seed           uint64
	RegionVariance float64
	// EmpiricalMinSamples is how many stored measurements a key needs before
	// an empirical distribution is reported alongside the simulated one.
	EmpiricalMinSamples int
}

// CacheConfig holds prediction cache settings
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// ReferenceConfig points at reference data sources
type ReferenceConfig struct {
	Workbook string
}

// BatchConfig bounds batch prediction fan-out
type BatchConfig struct {
	Concurrency int
	MaxItems    int
}

// WeatherConfig points at an upstream daily-weather service. An empty URL
// means synthetic weather is used instead.
type WeatherConfig struct {
	URL        string
	Token      string
	AuthMethod string
	Units      string
	RateLimit  int
	Timeout    time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database:    loadDatabaseConfig(),
		Server:      loadServerConfig(),
		Calibration: loadCalibrationParams(),
		Uncertainty: loadUncertaintyConfig(),
		Cache:       loadCacheConfig(),
		Reference:   ReferenceConfig{Workbook: getEnvOrDefault("REFERENCE_WORKBOOK", "")},
		Batch: BatchConfig{
			Concurrency: getEnvIntOrDefault("BATCH_CONCURRENCY", 8),
			MaxItems:    getEnvIntOrDefault("BATCH_MAX_ITEMS", 500),
		},
		Weather:  loadWeatherConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	tiers, err := loadTiers()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tier thresholds")
	}
	config.Tiers = tiers

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:       strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverMemory)),
		URL:          os.Getenv("DATABASE_URL"),
		MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:      getEnvOrDefault("PORT", "8080"),
		AdminPort: getEnvOrDefault("ADMIN_PORT", "8081"),
		GinMode:   getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadCalibrationParams() calibration.Params {
	defaults := calibration.DefaultParams()
	return calibration.Params{
		MinSamples:              getEnvIntOrDefault("CALIBRATION_MIN_SAMPLES", defaults.MinSamples),
		SamplesForMaxConfidence: getEnvIntOrDefault("CALIBRATION_SAMPLES_FOR_MAX", defaults.SamplesForMaxConfidence),
		MaxBoost:                getEnvFloatOrDefault("CALIBRATION_MAX_BOOST", defaults.MaxBoost),
	}
}

func loadUncertaintyConfig() UncertaintyConfig {
	seed := uint64(20240601)
	if value := os.Getenv("MC_SEED"); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			seed = parsed
		}
	}
	return UncertaintyConfig{
		Samples:             getEnvIntOrDefault("MC_SAMPLES", uncertainty.DefaultSamples),
		Seed:                seed,
		RegionVariance:      getEnvFloatOrDefault("REGION_VARIANCE", uncertainty.DefaultRegionVariance),
		EmpiricalMinSamples: getEnvIntOrDefault("EMPIRICAL_MIN_SAMPLES", 10),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Size: getEnvIntOrDefault("CACHE_SIZE", 1024),
		TTL:  getEnvDurationOrDefault("CACHE_TTL", 10*time.Minute),
	}
}

func loadWeatherConfig() WeatherConfig {
	return WeatherConfig{
		URL:        os.Getenv("WEATHER_URL"),
		Token:      os.Getenv("WEATHER_TOKEN"),
		AuthMethod: strings.ToLower(getEnvOrDefault("WEATHER_AUTH", "bearer")),
		Units:      strings.ToUpper(getEnvOrDefault("WEATHER_UNITS", "F")),
		RateLimit:  getEnvIntOrDefault("WEATHER_RATE_LIMIT", 60),
		Timeout:    getEnvDurationOrDefault("WEATHER_TIMEOUT", 30*time.Second),
	}
}

// loadTiers reads TIERS_<CATEGORY>="exceptional,premium,standard" overrides.
func loadTiers() (produce.TierTable, error) {
	table := produce.DefaultTierTable()
	for _, c := range produce.AllCategories() {
		key := "TIERS_" + strings.ToUpper(string(c))
		value := os.Getenv(key)
		if value == "" {
			continue
		}
		th, err := parseThresholds(value)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("%s: %v", key, err))
		}
		table[c] = th
	}
	return table, nil
}

func parseThresholds(value string) (produce.TierThresholds, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return produce.TierThresholds{}, fmt.Errorf("want 3 comma separated thresholds, got %q", value)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return produce.TierThresholds{}, fmt.Errorf("threshold %q: %w", p, err)
		}
		v[i] = f
	}
	th := produce.TierThresholds{Exceptional: v[0], Premium: v[1], Standard: v[2]}
	return th, th.Validate()
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if config.Database.URL == "" {
			return errors.ConfigInvalid(fmt.Sprintf("DATABASE_URL is required for driver %s", config.Database.Driver))
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown DATABASE_DRIVER %q", config.Database.Driver))
	}
	if err := config.Calibration.Validate(); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if config.Uncertainty.Samples <= 0 {
		return errors.ConfigInvalid("MC_SAMPLES must be positive")
	}
	if config.Uncertainty.RegionVariance < 0 {
		return errors.ConfigInvalid("REGION_VARIANCE must not be negative")
	}
	if config.Batch.Concurrency <= 0 {
		return errors.ConfigInvalid("BATCH_CONCURRENCY must be positive")
	}
	if config.Cache.Size <= 0 {
		return errors.ConfigInvalid("CACHE_SIZE must be positive")
	}
	if config.Weather.URL != "" {
		if config.Weather.Units != "F" && config.Weather.Units != "C" {
			return errors.ConfigInvalid(fmt.Sprintf("WEATHER_UNITS must be F or C, got %q", config.Weather.Units))
		}
		if config.Weather.Token == "" && config.Weather.AuthMethod != "none" {
			return errors.ConfigInvalid("WEATHER_TOKEN is required unless WEATHER_AUTH=none")
		}
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
