package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"gobrix/domain/calibration"
	"gobrix/domain/core"
	"gobrix/ports"
)

// DefaultMaxRetries bounds compare-and-swap attempts per Update.
const DefaultMaxRetries = 16

type calibrationRow struct {
	ID                string  `db:"id"`
	CultivarID        string  `db:"cultivar_id"`
	RegionID          string  `db:"region_id"`
	SeasonYear        int     `db:"season_year"`
	SampleCount       int     `db:"sample_count"`
	MeanOffset        float64 `db:"mean_offset"`
	M2                float64 `db:"m2"`
	MinOffset         float64 `db:"min_offset"`
	MaxOffset         float64 `db:"max_offset"`
	MAEBefore         float64 `db:"mae_before"`
	MAEAfter          float64 `db:"mae_after"`
	ImprovementPct    float64 `db:"improvement_pct"`
	ConfidenceBoost   float64 `db:"confidence_boost"`
	MinSamplesApplied int     `db:"min_samples_applied"`
	Active            bool    `db:"active"`
	LastMeasurementAt string  `db:"last_measurement_at"`
	LastComputedAt    string  `db:"last_computed_at"`
	Version           int64   `db:"version"`
}

const calibrationColumns = `id, cultivar_id, region_id, season_year, sample_count, mean_offset, m2,
	min_offset, max_offset, mae_before, mae_after, improvement_pct, confidence_boost,
	min_samples_applied, active, last_measurement_at, last_computed_at, version`

func toRow(c *calibration.RegionalCalibration) calibrationRow {
	return calibrationRow{
		ID:                c.ID.String(),
		CultivarID:        c.Key.CultivarID.String(),
		RegionID:          c.Key.RegionID.String(),
		SeasonYear:        c.Key.SeasonYear,
		SampleCount:       c.Stats.Count,
		MeanOffset:        c.Stats.Mean,
		M2:                c.Stats.M2,
		MinOffset:         c.MinOffset,
		MaxOffset:         c.MaxOffset,
		MAEBefore:         c.MAEBefore,
		MAEAfter:          c.MAEAfter,
		ImprovementPct:    c.ImprovementPct,
		ConfidenceBoost:   c.ConfidenceBoost,
		MinSamplesApplied: c.MinSamplesApplied,
		Active:            c.Active,
		LastMeasurementAt: formatTime(c.LastMeasurementAt),
		LastComputedAt:    formatTime(c.LastComputedAt),
		Version:           c.Version,
	}
}

func (r calibrationRow) toDomain() (*calibration.RegionalCalibration, error) {
	lastMeasurement, err := parseTime(r.LastMeasurementAt)
	if err != nil {
		return nil, fmt.Errorf("parse last_measurement_at: %w", err)
	}
	lastComputed, err := parseTime(r.LastComputedAt)
	if err != nil {
		return nil, fmt.Errorf("parse last_computed_at: %w", err)
	}
	return &calibration.RegionalCalibration{
		ID: core.CalibrationID(r.ID),
		Key: calibration.Key{
			CultivarID: core.CultivarID(r.CultivarID),
			RegionID:   core.RegionID(r.RegionID),
			SeasonYear: r.SeasonYear,
		},
		Stats:             calibration.RunningStats{Count: r.SampleCount, Mean: r.MeanOffset, M2: r.M2},
		MinOffset:         r.MinOffset,
		MaxOffset:         r.MaxOffset,
		MAEBefore:         r.MAEBefore,
		MAEAfter:          r.MAEAfter,
		ImprovementPct:    r.ImprovementPct,
		ConfidenceBoost:   r.ConfidenceBoost,
		MinSamplesApplied: r.MinSamplesApplied,
		Active:            r.Active,
		LastMeasurementAt: lastMeasurement,
		LastComputedAt:    lastComputed,
		Version:           r.Version,
	}, nil
}

// calibrationRepository implements ports.CalibrationRepository with
// optimistic concurrency on the version column.
type calibrationRepository struct {
	db         *sqlx.DB
	maxRetries int
}

// NewCalibrationRepository creates a calibration repository.
func NewCalibrationRepository(db *sqlx.DB, maxRetries int) ports.CalibrationRepository {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &calibrationRepository{db: db, maxRetries: maxRetries}
}

func (r *calibrationRepository) Get(ctx context.Context, key calibration.Key) (*calibration.RegionalCalibration, error) {
	query := r.db.Rebind(`SELECT ` + calibrationColumns + ` FROM calibrations
		WHERE cultivar_id = ? AND region_id = ? AND season_year = ?`)

	var row calibrationRow
	err := r.db.GetContext(ctx, &row, query, key.CultivarID.String(), key.RegionID.String(), key.SeasonYear)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrCalibrationAbsent, key)
		}
		return nil, fmt.Errorf("failed to get calibration: %w", err)
	}
	return row.toDomain()
}

// Update reads the current row, applies fn and writes back only if the
// version is unchanged. A lost race re-reads and retries.
func (r *calibrationRepository) Update(ctx context.Context, key calibration.Key, fn ports.UpdateFunc) (*calibration.RegionalCalibration, error) {
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current, err := r.Get(ctx, key)
		if err != nil && !errors.Is(err, core.ErrCalibrationAbsent) {
			return nil, err
		}

		var version int64
		var input *calibration.RegionalCalibration
		if current != nil {
			version = current.Version
			cp := *current
			input = &cp
		}

		next, err := fn(input)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return current, nil
		}

		stored := *next
		stored.Key = key
		stored.Version = version + 1

		var ok bool
		if current == nil {
			ok, err = r.insert(ctx, &stored)
		} else {
			ok, err = r.swap(ctx, &stored, version)
		}
		if err != nil {
			return nil, err
		}
		if ok {
			return &stored, nil
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts", core.ErrConcurrentUpdate, key, r.maxRetries)
}

func (r *calibrationRepository) insert(ctx context.Context, c *calibration.RegionalCalibration) (bool, error) {
	query := `INSERT INTO calibrations (` + calibrationColumns + `) VALUES (
		:id, :cultivar_id, :region_id, :season_year, :sample_count, :mean_offset, :m2,
		:min_offset, :max_offset, :mae_before, :mae_after, :improvement_pct, :confidence_boost,
		:min_samples_applied, :active, :last_measurement_at, :last_computed_at, :version
	) ON CONFLICT (cultivar_id, region_id, season_year) DO NOTHING`

	res, err := r.db.NamedExecContext(ctx, query, toRow(c))
	if err != nil {
		return false, fmt.Errorf("failed to insert calibration: %w", err)
	}
	return affected(res)
}

func (r *calibrationRepository) swap(ctx context.Context, c *calibration.RegionalCalibration, expected int64) (bool, error) {
	query := `UPDATE calibrations SET
		id = :id, sample_count = :sample_count, mean_offset = :mean_offset, m2 = :m2,
		min_offset = :min_offset, max_offset = :max_offset, mae_before = :mae_before,
		mae_after = :mae_after, improvement_pct = :improvement_pct, confidence_boost = :confidence_boost,
		min_samples_applied = :min_samples_applied, active = :active,
		last_measurement_at = :last_measurement_at, last_computed_at = :last_computed_at,
		version = :version
	WHERE cultivar_id = :cultivar_id AND region_id = :region_id AND season_year = :season_year
		AND version = :expected_version`

	row := toRow(c)
	args := map[string]interface{}{
		"id": row.ID, "sample_count": row.SampleCount, "mean_offset": row.MeanOffset, "m2": row.M2,
		"min_offset": row.MinOffset, "max_offset": row.MaxOffset, "mae_before": row.MAEBefore,
		"mae_after": row.MAEAfter, "improvement_pct": row.ImprovementPct, "confidence_boost": row.ConfidenceBoost,
		"min_samples_applied": row.MinSamplesApplied, "active": row.Active,
		"last_measurement_at": row.LastMeasurementAt, "last_computed_at": row.LastComputedAt,
		"version": row.Version, "cultivar_id": row.CultivarID, "region_id": row.RegionID,
		"season_year": row.SeasonYear, "expected_version": expected,
	}
	res, err := r.db.NamedExecContext(ctx, query, args)
	if err != nil {
		return false, fmt.Errorf("failed to update calibration: %w", err)
	}
	return affected(res)
}

// List returns matching records ordered by key.
func (r *calibrationRepository) List(ctx context.Context, filter calibration.Filter) ([]*calibration.RegionalCalibration, error) {
	var where []string
	var args []interface{}
	if filter.CultivarID != "" {
		where = append(where, "cultivar_id = ?")
		args = append(args, filter.CultivarID.String())
	}
	if filter.RegionID != "" {
		where = append(where, "region_id = ?")
		args = append(args, filter.RegionID.String())
	}
	if filter.SeasonYear != 0 {
		where = append(where, "season_year = ?")
		args = append(args, filter.SeasonYear)
	}
	if filter.ActiveOnly {
		where = append(where, "active = ?")
		args = append(args, true)
	}

	query := `SELECT ` + calibrationColumns + ` FROM calibrations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY cultivar_id, region_id, season_year"

	var rows []calibrationRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list calibrations: %w", err)
	}

	out := make([]*calibration.RegionalCalibration, 0, len(rows))
	for _, row := range rows {
		c, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *calibrationRepository) Deactivate(ctx context.Context, key calibration.Key) error {
	query := r.db.Rebind(`UPDATE calibrations SET active = ?, version = version + 1
		WHERE cultivar_id = ? AND region_id = ? AND season_year = ?`)

	res, err := r.db.ExecContext(ctx, query, false, key.CultivarID.String(), key.RegionID.String(), key.SeasonYear)
	if err != nil {
		return fmt.Errorf("failed to deactivate calibration: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrCalibrationAbsent, key)
	}
	return nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
