package calibration

import (
	"fmt"
	"math"
	"time"

	"gobrix/domain/core"
)

// Key identifies one calibration record.
type Key struct {
	CultivarID core.CultivarID `json:"cultivar_id"`
	RegionID   core.RegionID   `json:"region_id"`
	SeasonYear int             `json:"season_year"`
}

// String renders the key as cultivar:region:year.
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%d", k.CultivarID, k.RegionID, k.SeasonYear)
}

// RunningStats is the aggregate needed to recover mean and standard
// deviation without keeping sample history. M2 is the running sum of
// squared deviations from the mean.
type RunningStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	M2    float64 `json:"m2"`
}

// Variance returns the sample variance, or 0 with fewer than two samples.
func (s RunningStats) Variance() float64 {
	if s.Count < 2 {
		return 0
	}
	return s.M2 / float64(s.Count-1)
}

// StdDev returns the sample standard deviation.
func (s RunningStats) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// RegionalCalibration is the per (cultivar, region, season) bias correction.
type RegionalCalibration struct {
	ID  core.CalibrationID `json:"id"`
	Key Key                `json:"key"`

	Stats     RunningStats `json:"stats"`
	MinOffset float64      `json:"min_offset"`
	MaxOffset float64      `json:"max_offset"`

	MAEBefore      float64 `json:"mae_before"`
	MAEAfter       float64 `json:"mae_after"`
	ImprovementPct float64 `json:"improvement_pct"`

	ConfidenceBoost   float64 `json:"confidence_boost"`
	MinSamplesApplied int     `json:"min_samples_applied"`
	Active            bool    `json:"active"`

	LastMeasurementAt time.Time `json:"last_measurement_at"`
	LastComputedAt    time.Time `json:"last_computed_at"`

	// Version increments on every stored write; stores use it for compare-and-swap.
	Version int64 `json:"version"`
}

// SampleCount is a shorthand for Stats.Count.
func (c *RegionalCalibration) SampleCount() int {
	if c == nil {
		return 0
	}
	return c.Stats.Count
}

// StdDev is the standard deviation of observed-minus-predicted offsets.
func (c *RegionalCalibration) StdDev() float64 {
	return c.Stats.StdDev()
}

// Filter narrows calibration listings. Zero values match everything.
type Filter struct {
	CultivarID core.CultivarID
	RegionID   core.RegionID
	SeasonYear int
	ActiveOnly bool
}

// Matches reports whether a record passes the filter.
func (f Filter) Matches(c *RegionalCalibration) bool {
	if f.CultivarID != "" && c.Key.CultivarID != f.CultivarID {
		return false
	}
	if f.RegionID != "" && c.Key.RegionID != f.RegionID {
		return false
	}
	if f.SeasonYear != 0 && c.Key.SeasonYear != f.SeasonYear {
		return false
	}
	if f.ActiveOnly && !c.Active {
		return false
	}
	return true
}

// Measurement is one observed Brix reading paired with the prediction it
// is scored against.
type Measurement struct {
	ID         core.MeasurementID `json:"id"`
	Key        Key                `json:"key"`
	Predicted  float64            `json:"predicted"`
	Actual     float64            `json:"actual"`
	Source     string             `json:"source,omitempty"`
	MeasuredAt time.Time          `json:"measured_at"`
}

// Offset is actual minus predicted.
func (m Measurement) Offset() float64 {
	return m.Actual - m.Predicted
}
