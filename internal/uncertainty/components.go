package uncertainty

import (
	"fmt"
	"math"
	"sort"

	"gobrix/domain/calibration"
	"gobrix/domain/core"
	"gobrix/domain/produce"
)

// Component names. Cultivar and region are always required.
const (
	ComponentCultivar    = "cultivar"
	ComponentRegion      = "region"
	ComponentCalibration = "calibration"
	ComponentMeasurement = "measurement"
)

// DefaultRegionVariance is used when a region has no calibration history.
const DefaultRegionVariance = 0.25

// VarianceComponents maps a named source of uncertainty to its variance in Brix².
type VarianceComponents map[string]float64

// NewComponents builds the required cultivar and region components.
func NewComponents(cultivar, region float64) VarianceComponents {
	return VarianceComponents{ComponentCultivar: cultivar, ComponentRegion: region}
}

// With returns a copy with one more component.
func (v VarianceComponents) With(name string, variance float64) VarianceComponents {
	out := make(VarianceComponents, len(v)+1)
	for k, x := range v {
		out[k] = x
	}
	out[name] = variance
	return out
}

// Validate requires the cultivar and region components and rejects
// negative or non-finite variances.
func (v VarianceComponents) Validate() error {
	for _, required := range []string{ComponentCultivar, ComponentRegion} {
		if _, ok := v[required]; !ok {
			return fmt.Errorf("%w: missing %s component", core.ErrInvalidVarianceComponent, required)
		}
	}
	for _, name := range v.Names() {
		x := v[name]
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s=%v", core.ErrInvalidVarianceComponent, name, x)
		}
	}
	return nil
}

// Total is the summed variance, added in name order so the result does
// not depend on map iteration.
func (v VarianceComponents) Total() float64 {
	total := 0.0
	for _, name := range v.Names() {
		total += v[name]
	}
	return total
}

// Names returns component names in sorted order.
func (v VarianceComponents) Names() []string {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// CultivarVariance treats the genetic ceiling as roughly four standard deviations wide.
func CultivarVariance(c produce.QualityCeiling) float64 {
	sd := math.Abs(c.Max-c.Min) / 4
	return sd * sd
}

// CalibrationVariance is the residual offset variance of a calibration, or
// false when the record has too few samples to say.
func CalibrationVariance(rec *calibration.RegionalCalibration) (float64, bool) {
	if rec.SampleCount() < 2 {
		return 0, false
	}
	return rec.Stats.Variance(), true
}
