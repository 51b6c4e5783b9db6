package app

import (
	"context"
	"fmt"
	"time"

	"gobrix/domain/core"
	"gobrix/internal"
	"gobrix/internal/errors"
	"gobrix/internal/gdd"
	"gobrix/ports"
)

// Accumulation is the heat units a cultivar has received in a region.
type Accumulation struct {
	CultivarID core.CultivarID `json:"cultivar_id"`
	RegionID   core.RegionID   `json:"region_id"`
	Version    gdd.Version     `json:"version"`
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Days       int             `json:"days"`
	Total      float64         `json:"total"`
	AvgDaily   float64         `json:"avg_daily"`
}

// GDDService accumulates heat units from a weather source.
type GDDService struct {
	reference ports.ReferenceRepository
	weather   ports.WeatherSource
	registry  *gdd.Registry
	logger    *internal.Logger
}

// NewGDDService wires the service.
func NewGDDService(reference ports.ReferenceRepository, weather ports.WeatherSource, registry *gdd.Registry, logger *internal.Logger) *GDDService {
	return &GDDService{reference: reference, weather: weather, registry: registry, logger: logger.With("gdd")}
}

// Registry exposes the formula registry.
func (s *GDDService) Registry() *gdd.Registry {
	return s.registry
}

// Accumulate sums heat units for a cultivar/region over [from, to] with the
// version the registry selects for the pair, or version when non-empty.
func (s *GDDService) Accumulate(ctx context.Context, cultivarID core.CultivarID, regionID core.RegionID, from, to time.Time, version gdd.Version) (*Accumulation, error) {
	if to.Before(from) {
		return nil, errors.InvalidInput("accumulation range ends before it starts")
	}
	cultivar, err := s.reference.GetCultivar(ctx, cultivarID)
	if err != nil {
		return nil, err
	}
	region, err := s.reference.GetRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}

	if version == "" {
		version = s.registry.Select(*cultivar, *region)
	}
	formula, err := s.registry.Get(version)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	readings, err := s.weather.DailyReadings(ctx, regionID, from, to)
	if err != nil {
		return nil, fmt.Errorf("weather for %s: %w", regionID, err)
	}

	cfg := gdd.Config{BaseTemp: cultivar.BaseTempF}
	acc := &Accumulation{
		CultivarID: cultivarID,
		RegionID:   regionID,
		Version:    version,
		From:       from,
		To:         to,
		Days:       len(readings),
		Total:      gdd.Accumulate(formula, readings, cfg, from, to),
		AvgDaily:   gdd.AverageDaily(formula, readings, cfg),
	}
	s.logger.Debug("%s/%s %s %d days total=%.1f", cultivarID, regionID, version, acc.Days, acc.Total)
	return acc, nil
}

// Compare runs every registered version over the same readings.
func (s *GDDService) Compare(ctx context.Context, cultivarID core.CultivarID, regionID core.RegionID, from, to time.Time) ([]gdd.Comparison, error) {
	cultivar, err := s.reference.GetCultivar(ctx, cultivarID)
	if err != nil {
		return nil, err
	}
	readings, err := s.weather.DailyReadings(ctx, regionID, from, to)
	if err != nil {
		return nil, fmt.Errorf("weather for %s: %w", regionID, err)
	}
	return s.registry.Compare(readings, gdd.Config{BaseTemp: cultivar.BaseTempF})
}
