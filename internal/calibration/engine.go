// Package calibration maintains online bias corrections per cultivar,
// region and season from field measurements. Every function here is a pure
// reducer over domain/calibration values; persistence and locking belong to
// the store that owns the record.
package calibration

import (
	"fmt"
	"math"
	"time"

	"gobrix/domain/calibration"
	"gobrix/domain/core"
)

const (
	MinSamples              = 5
	SamplesForMaxConfidence = 20
	MaxConfidenceBoost      = 0.15

	// MaxCalibratedConfidence caps base confidence plus boost.
	MaxCalibratedConfidence = 0.95

	minScore = 0.0
	maxScore = 30.0
)

// Params are the tunable thresholds of the engine.
type Params struct {
	MinSamples              int     `json:"min_samples"`
	SamplesForMaxConfidence int     `json:"samples_for_max_confidence"`
	MaxBoost                float64 `json:"max_boost"`
}

// DefaultParams returns the stock thresholds.
func DefaultParams() Params {
	return Params{
		MinSamples:              MinSamples,
		SamplesForMaxConfidence: SamplesForMaxConfidence,
		MaxBoost:                MaxConfidenceBoost,
	}
}

// Validate checks the thresholds against their allowed ranges.
func (p Params) Validate() error {
	if p.MinSamples < 3 || p.MinSamples > 20 {
		return fmt.Errorf("min samples %d outside [3,20]", p.MinSamples)
	}
	if p.SamplesForMaxConfidence <= p.MinSamples || p.SamplesForMaxConfidence > 100 {
		return fmt.Errorf("samples for max confidence %d must be in (%d,100]", p.SamplesForMaxConfidence, p.MinSamples)
	}
	if p.MaxBoost <= 0 || p.MaxBoost > 0.2 {
		return fmt.Errorf("max confidence boost %.3f outside (0,0.2]", p.MaxBoost)
	}
	return nil
}

// Update folds one offset into the running statistics (Welford).
func Update(s calibration.RunningStats, x float64) calibration.RunningStats {
	if s.Count <= 0 {
		return calibration.RunningStats{Count: 1, Mean: x}
	}
	n := float64(s.Count)
	oldMean := s.Mean
	newMean := oldMean + (x-oldMean)/(n+1)
	return calibration.RunningStats{
		Count: s.Count + 1,
		Mean:  newMean,
		M2:    s.M2 + (x-oldMean)*(x-newMean),
	}
}

// ConfidenceBoost is zero below MinSamples, grows linearly from there and
// reaches exactly MaxBoost at SamplesForMaxConfidence.
func (p Params) ConfidenceBoost(n int) float64 {
	switch {
	case n < p.MinSamples:
		return 0
	case n >= p.SamplesForMaxConfidence:
		return p.MaxBoost
	}
	steps := float64(p.SamplesForMaxConfidence - p.MinSamples + 1)
	return p.MaxBoost * float64(n-p.MinSamples+1) / steps
}

// ConfidenceBoost uses the default thresholds.
func ConfidenceBoost(n int) float64 {
	return DefaultParams().ConfidenceBoost(n)
}

// BoostConfidence adds a calibration boost to a base confidence, capped.
func BoostConfidence(base, boost float64) float64 {
	return math.Min(MaxCalibratedConfidence, base+boost)
}

// Incorporate returns a new record with one (predicted, actual) pair folded
// in. A nil prev starts a fresh active record for key. prev is not modified.
func (p Params) Incorporate(prev *calibration.RegionalCalibration, key calibration.Key, predicted, actual float64, at time.Time) *calibration.RegionalCalibration {
	var next calibration.RegionalCalibration
	if prev != nil {
		next = *prev
	} else {
		next = calibration.RegionalCalibration{
			ID:     core.NewCalibrationID(),
			Key:    key,
			Active: true,
		}
	}

	offset := actual - predicted
	errBefore := math.Abs(offset)
	errAfter := math.Abs(actual - p.Apply(predicted, prev).Value)

	n := float64(next.Stats.Count)
	next.MAEBefore += (errBefore - next.MAEBefore) / (n + 1)
	next.MAEAfter += (errAfter - next.MAEAfter) / (n + 1)
	next.ImprovementPct = improvement(next.MAEBefore, next.MAEAfter)

	if next.Stats.Count == 0 {
		next.MinOffset, next.MaxOffset = offset, offset
	} else {
		next.MinOffset = math.Min(next.MinOffset, offset)
		next.MaxOffset = math.Max(next.MaxOffset, offset)
	}
	next.Stats = Update(next.Stats, offset)
	next.ConfidenceBoost = p.ConfidenceBoost(next.Stats.Count)
	next.MinSamplesApplied = p.MinSamples
	next.LastMeasurementAt = at
	next.LastComputedAt = at
	return &next
}

// Incorporate uses the default thresholds.
func Incorporate(prev *calibration.RegionalCalibration, key calibration.Key, predicted, actual float64, at time.Time) *calibration.RegionalCalibration {
	return DefaultParams().Incorporate(prev, key, predicted, actual, at)
}

// Application is the outcome of applying a calibration to a raw prediction.
type Application struct {
	Value           float64            `json:"value"`
	RawValue        float64            `json:"raw_value"`
	HasCalibration  bool               `json:"has_calibration"`
	Offset          float64            `json:"offset"`
	ConfidenceBoost float64            `json:"confidence_boost"`
	SampleCount     int                `json:"sample_count"`
	CalibrationID   core.CalibrationID `json:"calibration_id,omitempty"`
}

// Apply corrects raw by the record's mean offset when the record is active
// and has at least MinSamples samples. Otherwise raw comes back unchanged.
// SampleCount is reported either way.
func (p Params) Apply(raw float64, rec *calibration.RegionalCalibration) Application {
	out := Application{Value: raw, RawValue: raw, SampleCount: rec.SampleCount()}
	if rec == nil || !rec.Active || rec.Stats.Count < p.MinSamples {
		return out
	}
	out.HasCalibration = true
	out.Offset = rec.Stats.Mean
	out.ConfidenceBoost = rec.ConfidenceBoost
	out.CalibrationID = rec.ID
	out.Value = round2(math.Max(minScore, math.Min(maxScore, raw+rec.Stats.Mean)))
	return out
}

// Apply uses the default thresholds.
func Apply(raw float64, rec *calibration.RegionalCalibration) Application {
	return DefaultParams().Apply(raw, rec)
}

func improvement(before, after float64) float64 {
	if before <= 0 {
		return 0
	}
	return round2((before - after) / before * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
