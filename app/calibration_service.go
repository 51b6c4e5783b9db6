package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"gobrix/domain/calibration"
	"gobrix/domain/core"
	"gobrix/internal"
	calib "gobrix/internal/calibration"
	"gobrix/internal/errors"
	"gobrix/internal/quality"
	"gobrix/ports"
)

// MeasurementInput is one observed reading. When Predicted is nil the
// service predicts first and scores the reading against that.
type MeasurementInput struct {
	CultivarID core.CultivarID `json:"cultivar_id"`
	RegionID   core.RegionID   `json:"region_id"`
	SeasonYear int             `json:"season_year"`
	Predicted  *float64        `json:"predicted,omitempty"`
	Actual     float64         `json:"actual"`
	Source     string          `json:"source,omitempty"`
	MeasuredAt time.Time       `json:"measured_at"`
}

// Key returns the calibration key, defaulting the season to the measurement year.
func (m MeasurementInput) Key() calibration.Key {
	year := m.SeasonYear
	if year == 0 {
		year = m.MeasuredAt.Year()
	}
	return calibration.Key{CultivarID: m.CultivarID, RegionID: m.RegionID, SeasonYear: year}
}

// CalibrationService ingests measurements and exposes calibration state.
type CalibrationService struct {
	calibrations ports.CalibrationRepository
	measurements ports.MeasurementRepository
	reference    ports.ReferenceRepository
	params       calib.Params
	predictions  *PredictionService
	logger       *internal.Logger
}

// NewCalibrationService wires the service. measurements may be nil.
func NewCalibrationService(
	calibrations ports.CalibrationRepository,
	measurements ports.MeasurementRepository,
	reference ports.ReferenceRepository,
	params calib.Params,
	logger *internal.Logger,
) *CalibrationService {
	return &CalibrationService{
		calibrations: calibrations,
		measurements: measurements,
		reference:    reference,
		params:       params,
		logger:       logger.With("calibration"),
	}
}

// WithPredictions lets measurements without a predicted value be scored
// against a fresh uncalibrated prediction.
func (s *CalibrationService) WithPredictions(p *PredictionService) *CalibrationService {
	s.predictions = p
	return s
}

// RecordMeasurement folds one reading into its calibration record. The
// read-modify-write is serialized per key by the repository.
func (s *CalibrationService) RecordMeasurement(ctx context.Context, m MeasurementInput) (*calibration.RegionalCalibration, error) {
	if m.MeasuredAt.IsZero() {
		return nil, errors.InvalidInput("measured_at is required")
	}
	predicted, err := s.predictedFor(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := validateReading(m.Actual, predicted); err != nil {
		return nil, err
	}

	key := m.Key()
	rec, err := s.calibrations.Update(ctx, key, func(current *calibration.RegionalCalibration) (*calibration.RegionalCalibration, error) {
		return s.params.Incorporate(current, key, predicted, m.Actual, m.MeasuredAt), nil
	})
	if err != nil {
		return nil, fmt.Errorf("update calibration %s: %w", key, err)
	}

	if s.measurements != nil {
		err := s.measurements.Record(ctx, calibration.Measurement{
			ID:         core.NewMeasurementID(),
			Key:        key,
			Predicted:  predicted,
			Actual:     m.Actual,
			Source:     m.Source,
			MeasuredAt: m.MeasuredAt,
		})
		if err != nil {
			// The aggregate is already durable; history is best effort.
			s.logger.Warn("measurement history for %s not recorded: %v", key, err)
		}
	}

	s.logger.Info("%s n=%d offset=%+.3f boost=%.3f", key, rec.Stats.Count, rec.Stats.Mean, rec.ConfidenceBoost)
	return rec, nil
}

func (s *CalibrationService) predictedFor(ctx context.Context, m MeasurementInput) (float64, error) {
	if m.Predicted != nil {
		if _, err := s.reference.GetCultivar(ctx, m.CultivarID); err != nil {
			return 0, err
		}
		if _, err := s.reference.GetRegion(ctx, m.RegionID); err != nil {
			return 0, err
		}
		return *m.Predicted, nil
	}
	if s.predictions == nil {
		return 0, errors.InvalidInput("predicted value is required")
	}
	p, err := s.predictions.Predict(ctx, quality.Input{CultivarID: m.CultivarID, RegionID: m.RegionID, AsOf: m.MeasuredAt})
	if err != nil {
		return 0, err
	}
	return p.RawScore, nil
}

func validateReading(actual, predicted float64) error {
	for _, v := range []float64{actual, predicted} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
			return errors.InvalidInput(fmt.Sprintf("brix reading %v out of range", v))
		}
	}
	return nil
}

func (s *CalibrationService) Get(ctx context.Context, key calibration.Key) (*calibration.RegionalCalibration, error) {
	return s.calibrations.Get(ctx, key)
}

func (s *CalibrationService) List(ctx context.Context, filter calibration.Filter) ([]*calibration.RegionalCalibration, error) {
	return s.calibrations.List(ctx, filter)
}

func (s *CalibrationService) Deactivate(ctx context.Context, key calibration.Key) error {
	if err := s.calibrations.Deactivate(ctx, key); err != nil {
		return err
	}
	s.logger.Info("%s deactivated", key)
	return nil
}

// Accuracy summarizes calibration quality across matching records.
func (s *CalibrationService) Accuracy(ctx context.Context, filter calibration.Filter) (calib.Report, error) {
	records, err := s.calibrations.List(ctx, filter)
	if err != nil {
		return calib.Report{}, err
	}
	return s.params.Accuracy(records), nil
}

// History lists stored measurements for a key, newest first.
func (s *CalibrationService) History(ctx context.Context, key calibration.Key, limit int) ([]calibration.Measurement, error) {
	if s.measurements == nil {
		return nil, nil
	}
	return s.measurements.ListByKey(ctx, key, limit)
}
