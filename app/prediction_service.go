// Package app orchestrates the prediction core against the ports.
package app

import (
	"context"
	"errors"
	"fmt"

	"gobrix/domain/calibration"
	"gobrix/domain/core"
	"gobrix/domain/produce"
	"gobrix/internal"
	"gobrix/internal/cache"
	calib "gobrix/internal/calibration"
	"gobrix/internal/quality"
	"gobrix/internal/uncertainty"
	"gobrix/ports"
)

// UncertaintySettings controls the distributions attached to predictions.
type UncertaintySettings struct {
	Samples             int
	Seed                uint64
	RegionVariance      float64
	EmpiricalMinSamples int
}

// DefaultUncertaintySettings mirrors the config defaults.
func DefaultUncertaintySettings() UncertaintySettings {
	return UncertaintySettings{
		Samples:             uncertainty.DefaultSamples,
		Seed:                20240601,
		RegionVariance:      uncertainty.DefaultRegionVariance,
		EmpiricalMinSamples: 10,
	}
}

// Prediction is a calibrated point prediction with its uncertainty.
type Prediction struct {
	quality.Result

	SeasonYear  int                 `json:"season_year"`
	RawScore    float64             `json:"raw_score"`
	Calibration calib.Application   `json:"calibration"`
	RawTier     produce.QualityTier `json:"raw_tier"`
	Cached      bool                `json:"cached"`

	Distribution           uncertainty.BrixDistribution  `json:"distribution"`
	Empirical              *uncertainty.BrixDistribution `json:"empirical,omitempty"`
	ConservativeTier       produce.QualityTier           `json:"conservative_tier"`
	DistributionConfidence float64                       `json:"distribution_confidence"`
}

// Key is the calibration key the prediction was adjusted with.
func (p *Prediction) Key() calibration.Key {
	return calibration.Key{CultivarID: p.CultivarID, RegionID: p.RegionID, SeasonYear: p.SeasonYear}
}

// PredictionService resolves reference data, runs the predictor and layers
// calibration and uncertainty on top.
type PredictionService struct {
	reference    ports.ReferenceRepository
	calibrations ports.CalibrationRepository
	measurements ports.MeasurementRepository
	rng          ports.RNGPort
	predictor    *quality.Predictor
	params       calib.Params
	settings     UncertaintySettings
	cache        *cache.Cache[quality.Result]
	logger       *internal.Logger
}

// NewPredictionService wires the service. cache may be nil.
func NewPredictionService(
	reference ports.ReferenceRepository,
	calibrations ports.CalibrationRepository,
	measurements ports.MeasurementRepository,
	rng ports.RNGPort,
	predictor *quality.Predictor,
	params calib.Params,
	settings UncertaintySettings,
	resultCache *cache.Cache[quality.Result],
	logger *internal.Logger,
) *PredictionService {
	return &PredictionService{
		reference:    reference,
		calibrations: calibrations,
		measurements: measurements,
		rng:          rng,
		predictor:    predictor,
		params:       params,
		settings:     settings,
		cache:        resultCache,
		logger:       logger.With("predict"),
	}
}

// Predict runs one prediction. Unknown references surface as
// core.ErrUnknownReference.
func (s *PredictionService) Predict(ctx context.Context, in quality.Input) (*Prediction, error) {
	ref, err := s.resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	result, cached, err := s.point(in, ref)
	if err != nil {
		return nil, err
	}

	p := &Prediction{
		Result:     result,
		SeasonYear: in.AsOf.Year(),
		RawScore:   result.Score,
		RawTier:    result.Tier,
		Cached:     cached,
	}

	rec, err := s.calibrationFor(ctx, p.Key())
	if err != nil {
		return nil, err
	}
	p.Calibration = s.params.Apply(result.Score, rec)
	thresholds := s.predictor.Tiers().For(result.Category)
	if p.Calibration.HasCalibration {
		p.Score = p.Calibration.Value
		p.Tier = thresholds.Classify(p.Score)
		p.Confidence = calib.BoostConfidence(result.Confidence, p.Calibration.ConfidenceBoost)
	}

	if err := s.attachUncertainty(ctx, p, *ref.Cultivar, rec, thresholds); err != nil {
		return nil, err
	}

	s.logger.Debug("%s score=%.2f raw=%.2f tier=%s calibrated=%v cached=%v",
		p.Key(), p.Score, p.RawScore, p.Tier, p.Calibration.HasCalibration, cached)
	return p, nil
}

func (s *PredictionService) resolve(ctx context.Context, in quality.Input) (quality.Reference, error) {
	var ref quality.Reference
	var err error
	if ref.Cultivar, err = s.reference.GetCultivar(ctx, in.CultivarID); err != nil {
		return ref, err
	}
	if ref.Region, err = s.reference.GetRegion(ctx, in.RegionID); err != nil {
		return ref, err
	}
	if in.RootstockID != "" {
		if ref.Rootstock, err = s.reference.GetRootstock(ctx, in.RootstockID); err != nil {
			return ref, err
		}
	}
	return ref, nil
}

// point returns the uncalibrated result, from cache when possible.
// Reference data is immutable, so the input alone keys the result.
func (s *PredictionService) point(in quality.Input, ref quality.Reference) (quality.Result, bool, error) {
	var key string
	if s.cache != nil {
		var err error
		if key, err = cache.Fingerprint(in); err == nil {
			if r, ok := s.cache.Get(key); ok {
				return r, true, nil
			}
		}
	}

	r, err := s.predictor.Predict(in, ref)
	if err != nil {
		return quality.Result{}, false, err
	}
	if key != "" {
		s.cache.Add(key, r)
	}
	return r, false, nil
}

func (s *PredictionService) calibrationFor(ctx context.Context, key calibration.Key) (*calibration.RegionalCalibration, error) {
	rec, err := s.calibrations.Get(ctx, key)
	if errors.Is(err, core.ErrCalibrationAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load calibration %s: %w", key, err)
	}
	return rec, nil
}

func (s *PredictionService) attachUncertainty(ctx context.Context, p *Prediction, c produce.Cultivar, rec *calibration.RegionalCalibration, thresholds produce.TierThresholds) error {
	components := uncertainty.NewComponents(uncertainty.CultivarVariance(c.Ceiling), s.settings.RegionVariance)
	if p.Calibration.HasCalibration {
		if v, ok := uncertainty.CalibrationVariance(rec); ok {
			components = components.With(uncertainty.ComponentCalibration, v)
		}
	}

	src := s.rng.Source(p.Key().String(), s.settings.Seed)
	dist, err := uncertainty.MonteCarlo(p.Score, components, s.settings.Samples, src)
	if err != nil {
		return fmt.Errorf("simulate distribution: %w", err)
	}
	p.Distribution = dist
	p.ConservativeTier = uncertainty.ClassifyConservative(dist, thresholds)
	p.DistributionConfidence = uncertainty.Confidence(dist)

	if s.measurements == nil || s.settings.EmpiricalMinSamples <= 0 {
		return nil
	}
	history, err := s.measurements.ListByKey(ctx, p.Key(), 0)
	if err != nil {
		return fmt.Errorf("load measurements: %w", err)
	}
	if len(history) < s.settings.EmpiricalMinSamples {
		return nil
	}
	values := make([]float64, len(history))
	for i, m := range history {
		values[i] = m.Actual
	}
	emp, err := uncertainty.Empirical(values, p.Key().String())
	if err != nil {
		return err
	}
	p.Empirical = &emp
	return nil
}

// CacheStats reports prediction cache counters; zero when caching is off.
func (s *PredictionService) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.Stats()
}
