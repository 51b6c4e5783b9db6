// Package gdd computes growing degree days (heat units) with versioned formulas.
//
// Each version refines the previous one:
//
//	v1  max(0, (tMax+tMin)/2 - base)
//	v2  v1 with tMax and tMin clamped to a heat-stress cap
//	v3  v2 scaled by a water-stress modifier in [0.5, 1.0]
package gdd

import (
	"math"
	"time"
)

// Version identifies a GDD formula.
type Version string

const (
	V1 Version = "v1"
	V2 Version = "v2"
	V3 Version = "v3"
)

const (
	// DefaultHeatCapF is the development ceiling used by v2+ when no cap is configured.
	DefaultHeatCapF = 86.0
	MinWaterStress  = 0.5
	MaxWaterStress  = 1.0
)

// DailyReading is one day of weather for a region.
type DailyReading struct {
	Date  time.Time `json:"date"`
	TMaxF float64   `json:"tmax_f"`
	TMinF float64   `json:"tmin_f"`
	// WaterStress is the precipitation-deficit modifier, 0 when unknown.
	WaterStress float64 `json:"water_stress,omitempty"`
}

// Config parameterizes a formula for a crop.
type Config struct {
	BaseTemp    float64  `json:"base_temp"`
	HeatCap     *float64 `json:"heat_cap,omitempty"`
	WaterStress *float64 `json:"water_stress,omitempty"`
}

// Formula computes the heat units for a single day.
type Formula interface {
	Version() Version
	Daily(r DailyReading, cfg Config) float64
}

// Simple is the v1 averaging formula.
type Simple struct{}

func (Simple) Version() Version { return V1 }

func (Simple) Daily(r DailyReading, cfg Config) float64 {
	return averageAboveBase(r.TMaxF, r.TMinF, cfg.BaseTemp)
}

// HeatCapped is the v2 formula.
type HeatCapped struct{}

func (HeatCapped) Version() Version { return V2 }

func (HeatCapped) Daily(r DailyReading, cfg Config) float64 {
	limit := DefaultHeatCapF
	if cfg.HeatCap != nil {
		limit = *cfg.HeatCap
	}
	return averageAboveBase(math.Min(r.TMaxF, limit), math.Min(r.TMinF, limit), cfg.BaseTemp)
}

// WaterStressed is the v3 formula. The per-reading modifier wins over the config value.
type WaterStressed struct{}

func (WaterStressed) Version() Version { return V3 }

func (WaterStressed) Daily(r DailyReading, cfg Config) float64 {
	modifier := MaxWaterStress
	if cfg.WaterStress != nil {
		modifier = *cfg.WaterStress
	}
	if r.WaterStress > 0 {
		modifier = r.WaterStress
	}
	return HeatCapped{}.Daily(r, cfg) * clampStress(modifier)
}

func averageAboveBase(tMax, tMin, base float64) float64 {
	return math.Max(0, (tMax+tMin)/2-base)
}

func clampStress(m float64) float64 {
	return math.Max(MinWaterStress, math.Min(MaxWaterStress, m))
}
