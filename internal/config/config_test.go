package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobrix/domain/produce"
	"gobrix/internal/calibration"
	"gobrix/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, calibration.DefaultParams(), cfg.Calibration)
	assert.Equal(t, 1000, cfg.Uncertainty.Samples)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, produce.DefaultTierTable(), cfg.Tiers)
	assert.Empty(t, cfg.Weather.URL)
	assert.Equal(t, "F", cfg.Weather.Units)
}

func TestLoad_Weather(t *testing.T) {
	t.Setenv("WEATHER_URL", "https://wx.example/daily")
	t.Setenv("WEATHER_AUTH", "none")
	t.Setenv("WEATHER_UNITS", "c")
	t.Setenv("WEATHER_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://wx.example/daily", cfg.Weather.URL)
	assert.Equal(t, "C", cfg.Weather.Units)
	assert.Equal(t, 5*time.Second, cfg.Weather.Timeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "file:brix.db")
	t.Setenv("CALIBRATION_MIN_SAMPLES", "3")
	t.Setenv("CALIBRATION_SAMPLES_FOR_MAX", "12")
	t.Setenv("CALIBRATION_MAX_BOOST", "0.2")
	t.Setenv("MC_SEED", "7")
	t.Setenv("TIERS_EGGS", "20, 16, 12")
	t.Setenv("CACHE_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, calibration.Params{MinSamples: 3, SamplesForMaxConfidence: 12, MaxBoost: 0.2}, cfg.Calibration)
	assert.Equal(t, uint64(7), cfg.Uncertainty.Seed)
	assert.Equal(t, produce.TierThresholds{Exceptional: 20, Premium: 16, Standard: 12}, cfg.Tiers.For(produce.CategoryEggs))
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"min samples out of range": {"CALIBRATION_MIN_SAMPLES": "2"},
		"boost above cap":          {"CALIBRATION_MAX_BOOST": "0.3"},
		"max below min":            {"CALIBRATION_MIN_SAMPLES": "10", "CALIBRATION_SAMPLES_FOR_MAX": "10"},
		"postgres without url":     {"DATABASE_DRIVER": "postgres", "DATABASE_URL": ""},
		"unknown driver":           {"DATABASE_DRIVER": "mongo"},
		"tiers not descending":     {"TIERS_PRODUCE": "10,12,14"},
		"tiers malformed":          {"TIERS_NUT": "22,20"},
		"weather units":            {"WEATHER_URL": "http://wx", "WEATHER_TOKEN": "t", "WEATHER_UNITS": "K"},
		"weather without token":    {"WEATHER_URL": "http://wx", "WEATHER_TOKEN": ""},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
