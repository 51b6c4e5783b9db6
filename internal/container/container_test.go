package container

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobrix/adapters/excel"
	"gobrix/app"
	"gobrix/domain/calibration"
	"gobrix/internal"
	"gobrix/internal/config"
	"gobrix/internal/quality"
	"gobrix/internal/testkit"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("WEATHER_URL", "")
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Uncertainty.Samples = 200
	return cfg
}

func TestNew_MemoryWithFixtures(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, testConfig(t), internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)
	defer c.Shutdown(ctx)

	assert.Nil(t, c.DB)
	p, err := c.Predictions.Predict(ctx, quality.Input{
		CultivarID: testkit.NavelOrange,
		RegionID:   testkit.IndianRiver,
		AsOf:       time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Greater(t, p.Score, 0.0)

	region, ok := c.Catalog.LookupState("FL")
	assert.True(t, ok)
	assert.Equal(t, testkit.IndianRiver, region)
}

func TestNew_SQLiteFromWorkbook(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "reference.xlsx")
	require.NoError(t, excel.WriteWorkbook(path, FixtureWorkbook()))

	cfg := testConfig(t)
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.URL = filepath.Join(dir, "brix.db")
	cfg.Reference.Workbook = path

	c, err := New(ctx, cfg, internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)
	defer c.Shutdown(ctx)
	require.NotNil(t, c.DB)

	predicted := 11.0
	rec, err := c.Calibration.RecordMeasurement(ctx, app.MeasurementInput{
		CultivarID: testkit.NavelOrange,
		RegionID:   testkit.IndianRiver,
		Predicted:  &predicted,
		Actual:     11.5,
		MeasuredAt: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Stats.Count)

	stored, err := c.Calibrations.Get(ctx, calibration.Key{CultivarID: testkit.NavelOrange, RegionID: testkit.IndianRiver, SeasonYear: 2025})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, stored.Stats.Mean, 1e-9)
}

func TestNew_BadWorkbook(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reference.Workbook = filepath.Join(t.TempDir(), "missing.xlsx")
	_, err := New(context.Background(), cfg, internal.NewLogger(internal.LogLevelError))
	require.Error(t, err)
}

func TestSyntheticWeather_CoversTwoSeasons(t *testing.T) {
	c, err := New(context.Background(), testConfig(t), internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)

	store := SyntheticWeather(c.Reference, 2025)
	readings, err := store.DailyReadings(context.Background(), testkit.IndianRiver,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, readings, 366+365)
}
