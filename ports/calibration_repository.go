package ports

import (
	"context"

	"gobrix/domain/calibration"
)

// UpdateFunc computes the next record from the current one. current is nil
// when no record exists for the key yet.
type UpdateFunc func(current *calibration.RegionalCalibration) (*calibration.RegionalCalibration, error)

// CalibrationRepository owns calibration durability and serializes writers
// per key. Different keys never block each other.
type CalibrationRepository interface {
	// Get returns core.ErrCalibrationAbsent when no record exists.
	Get(ctx context.Context, key calibration.Key) (*calibration.RegionalCalibration, error)

	// Update runs fn as a read-modify-write with at most one writer per key
	// and stores its result.
	Update(ctx context.Context, key calibration.Key, fn UpdateFunc) (*calibration.RegionalCalibration, error)

	List(ctx context.Context, filter calibration.Filter) ([]*calibration.RegionalCalibration, error)

	// Deactivate marks a record inactive. Records are never deleted.
	Deactivate(ctx context.Context, key calibration.Key) error
}

// MeasurementRepository keeps the raw measurement history used for
// empirical distributions and audits.
type MeasurementRepository interface {
	Record(ctx context.Context, m calibration.Measurement) error
	ListByKey(ctx context.Context, key calibration.Key, limit int) ([]calibration.Measurement, error)
}
