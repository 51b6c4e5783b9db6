package sqlstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobrix/domain/calibration"
	"gobrix/domain/core"

	calib "gobrix/internal/calibration"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "brix.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

var navelKey = calibration.Key{CultivarID: "navel_orange", RegionID: "indian_river", SeasonYear: 2025}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "x", 0)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestCalibrationRepository_RoundTrip(t *testing.T) {
	repo := NewCalibrationRepository(newTestDB(t), 0)
	ctx := context.Background()
	at := time.Date(2025, time.December, 10, 8, 30, 0, 0, time.UTC)

	_, err := repo.Get(ctx, navelKey)
	assert.ErrorIs(t, err, core.ErrCalibrationAbsent)

	var stored *calibration.RegionalCalibration
	for _, actual := range []float64{12.0, 12.4, 11.8} {
		stored, err = repo.Update(ctx, navelKey, func(current *calibration.RegionalCalibration) (*calibration.RegionalCalibration, error) {
			return calib.Incorporate(current, navelKey, 11.5, actual, at), nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), stored.Version)

	got, err := repo.Get(ctx, navelKey)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stats.Count)
	assert.InDelta(t, stored.Stats.Mean, got.Stats.Mean, 1e-12)
	assert.InDelta(t, stored.Stats.M2, got.Stats.M2, 1e-12)
	assert.Equal(t, stored.ID, got.ID)
	assert.True(t, got.Active)
	assert.True(t, at.Equal(got.LastMeasurementAt))
	assert.Equal(t, int64(3), got.Version)
}

func TestCalibrationRepository_ConcurrentUpdatesAreSerialized(t *testing.T) {
	repo := NewCalibrationRepository(newTestDB(t), 0)
	at := time.Date(2025, time.December, 10, 0, 0, 0, 0, time.UTC)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(context.Background(), navelKey, func(current *calibration.RegionalCalibration) (*calibration.RegionalCalibration, error) {
				return calib.Incorporate(current, navelKey, 11.0, 12.0, at), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(context.Background(), navelKey)
	require.NoError(t, err)
	assert.Equal(t, writers, got.Stats.Count)
	assert.Equal(t, int64(writers), got.Version)
}

func TestCalibrationRepository_ListAndDeactivate(t *testing.T) {
	repo := NewCalibrationRepository(newTestDB(t), 0)
	ctx := context.Background()
	at := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	keys := []calibration.Key{
		navelKey,
		{CultivarID: "honeycrisp", RegionID: "yakima", SeasonYear: 2025},
		{CultivarID: "honeycrisp", RegionID: "yakima", SeasonYear: 2024},
	}
	for _, k := range keys {
		k := k
		_, err := repo.Update(ctx, k, func(current *calibration.RegionalCalibration) (*calibration.RegionalCalibration, error) {
			return calib.Incorporate(current, k, 10, 11, at), nil
		})
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, calibration.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, keys[2], all[0].Key)

	byYear, err := repo.List(ctx, calibration.Filter{CultivarID: "honeycrisp", SeasonYear: 2025})
	require.NoError(t, err)
	require.Len(t, byYear, 1)

	require.NoError(t, repo.Deactivate(ctx, navelKey))
	active, err := repo.List(ctx, calibration.Filter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	got, err := repo.Get(ctx, navelKey)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, int64(2), got.Version)

	err = repo.Deactivate(ctx, calibration.Key{CultivarID: "missing", RegionID: "r", SeasonYear: 2025})
	assert.ErrorIs(t, err, core.ErrCalibrationAbsent)
}

func TestCalibrationRepository_UpdateErrorPropagates(t *testing.T) {
	repo := NewCalibrationRepository(newTestDB(t), 0)
	_, err := repo.Update(context.Background(), navelKey, func(*calibration.RegionalCalibration) (*calibration.RegionalCalibration, error) {
		return nil, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMeasurementRepository_NewestFirst(t *testing.T) {
	repo := NewMeasurementRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		require.NoError(t, repo.Record(ctx, calibration.Measurement{
			Key:        navelKey,
			Predicted:  11.5,
			Actual:     11.5 + float64(i)/10,
			Source:     "lab",
			MeasuredAt: base.AddDate(0, 0, i),
		}))
	}
	require.NoError(t, repo.Record(ctx, calibration.Measurement{
		Key: calibration.Key{CultivarID: "other", RegionID: "r", SeasonYear: 2025}, Actual: 9, MeasuredAt: base,
	}))

	latest, err := repo.ListByKey(ctx, navelKey, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.InDelta(t, 11.8, latest[0].Actual, 1e-9)
	assert.True(t, base.AddDate(0, 0, 3).Equal(latest[0].MeasuredAt))
	assert.NotEmpty(t, latest[0].ID)
	assert.Equal(t, "lab", latest[0].Source)

	all, err := repo.ListByKey(ctx, navelKey, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
