package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gobrix/domain/calibration"
	"gobrix/domain/core"
	"gobrix/ports"
)

type measurementRow struct {
	ID         string  `db:"id"`
	CultivarID string  `db:"cultivar_id"`
	RegionID   string  `db:"region_id"`
	SeasonYear int     `db:"season_year"`
	Predicted  float64 `db:"predicted"`
	Actual     float64 `db:"actual"`
	Source     string  `db:"source"`
	MeasuredAt string  `db:"measured_at"`
}

type measurementRepository struct {
	db *sqlx.DB
}

// NewMeasurementRepository creates a measurement repository.
func NewMeasurementRepository(db *sqlx.DB) ports.MeasurementRepository {
	return &measurementRepository{db: db}
}

func (r *measurementRepository) Record(ctx context.Context, m calibration.Measurement) error {
	if m.ID == "" {
		m.ID = core.NewMeasurementID()
	}
	row := measurementRow{
		ID:         m.ID.String(),
		CultivarID: m.Key.CultivarID.String(),
		RegionID:   m.Key.RegionID.String(),
		SeasonYear: m.Key.SeasonYear,
		Predicted:  m.Predicted,
		Actual:     m.Actual,
		Source:     m.Source,
		MeasuredAt: formatTime(m.MeasuredAt),
	}
	query := `INSERT INTO measurements (id, cultivar_id, region_id, season_year, predicted, actual, source, measured_at)
		VALUES (:id, :cultivar_id, :region_id, :season_year, :predicted, :actual, :source, :measured_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to record measurement: %w", err)
	}
	return nil
}

// ListByKey returns the newest measurements first. limit <= 0 returns all.
func (r *measurementRepository) ListByKey(ctx context.Context, key calibration.Key, limit int) ([]calibration.Measurement, error) {
	query := `SELECT id, cultivar_id, region_id, season_year, predicted, actual, source, measured_at
		FROM measurements
		WHERE cultivar_id = ? AND region_id = ? AND season_year = ?
		ORDER BY measured_at DESC, id DESC`
	args := []interface{}{key.CultivarID.String(), key.RegionID.String(), key.SeasonYear}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []measurementRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}

	out := make([]calibration.Measurement, 0, len(rows))
	for _, row := range rows {
		at, err := parseTime(row.MeasuredAt)
		if err != nil {
			return nil, fmt.Errorf("parse measured_at: %w", err)
		}
		out = append(out, calibration.Measurement{
			ID:         core.MeasurementID(row.ID),
			Key:        key,
			Predicted:  row.Predicted,
			Actual:     row.Actual,
			Source:     row.Source,
			MeasuredAt: at,
		})
	}
	return out, nil
}
