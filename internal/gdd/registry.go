package gdd

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gobrix/domain/produce"
)

// Status is the lifecycle state of a formula version.
type Status string

const (
	StatusActive       Status = "active"
	StatusDeprecated   Status = "deprecated"
	StatusExperimental Status = "experimental"
)

// VersionInfo is registry metadata used for A/B comparison across versions.
type VersionInfo struct {
	Version       Version   `json:"version"`
	DeployedAt    time.Time `json:"deployed_at"`
	Description   string    `json:"description"`
	HistoricalMAE float64   `json:"historical_mae_days"`
	Status        Status    `json:"status"`
}

type entry struct {
	formula Formula
	info    VersionInfo
}

// Registry maps version identifiers to formulas.
type Registry struct {
	mu       sync.RWMutex
	entries  map[Version]entry
	fallback Version
}

// NewRegistry creates an empty registry with the given default version.
func NewRegistry(fallback Version) *Registry {
	return &Registry{entries: make(map[Version]entry), fallback: fallback}
}

// DefaultRegistry registers v1, v2 and v3.
func DefaultRegistry() *Registry {
	r := NewRegistry(V2)
	r.Register(Simple{}, VersionInfo{
		DeployedAt:    time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Description:   "Average temperature above base",
		HistoricalMAE: 9.5,
		Status:        StatusDeprecated,
	})
	r.Register(HeatCapped{}, VersionInfo{
		DeployedAt:    time.Date(2024, time.September, 15, 0, 0, 0, 0, time.UTC),
		Description:   "Temperatures clamped at the heat-stress cap before averaging",
		HistoricalMAE: 7.2,
		Status:        StatusActive,
	})
	r.Register(WaterStressed{}, VersionInfo{
		DeployedAt:    time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		Description:   "Heat-capped GDD scaled by precipitation-deficit water stress",
		HistoricalMAE: 6.1,
		Status:        StatusExperimental,
	})
	return r
}

// Register adds or replaces a formula. The info version is taken from the formula.
func (r *Registry) Register(f Formula, info VersionInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info.Version = f.Version()
	r.entries[f.Version()] = entry{formula: f, info: info}
}

// Get returns the formula for a version.
func (r *Registry) Get(v Version) (Formula, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[v]
	if !ok {
		return nil, fmt.Errorf("gdd formula %q not registered", v)
	}
	return e.formula, nil
}

// Info returns registry metadata for a version.
func (r *Registry) Info(v Version) (VersionInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[v]
	return e.info, ok
}

// Versions lists metadata ordered by deployment date.
func (r *Registry) Versions() []VersionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]VersionInfo, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DeployedAt.Equal(out[j].DeployedAt) {
			return out[i].Version < out[j].Version
		}
		return out[i].DeployedAt.Before(out[j].DeployedAt)
	})
	return out
}

// Latest returns the most recently deployed non-deprecated version.
func (r *Registry) Latest() Version {
	versions := r.Versions()
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].Status != StatusDeprecated {
			return versions[i].Version
		}
	}
	return r.fallback
}

// Default returns the version used when no selection rule applies.
func (r *Registry) Default() Version {
	return r.fallback
}

// Select picks a version for a cultivar grown in a region. Heat-sensitive
// crops and drought-prone regions get the latest formula.
func (r *Registry) Select(c produce.Cultivar, region produce.Region) Version {
	if c.HeatSensitive || region.DroughtProne {
		return r.Latest()
	}
	return r.fallback
}

// Comparison is the total heat units each version produced over the same readings.
type Comparison struct {
	Version       Version `json:"version"`
	Total         float64 `json:"total"`
	HistoricalMAE float64 `json:"historical_mae_days"`
}

// Compare runs every requested version (all when none are given) over the
// same readings.
func (r *Registry) Compare(readings []DailyReading, cfg Config, versions ...Version) ([]Comparison, error) {
	if len(versions) == 0 {
		for _, info := range r.Versions() {
			versions = append(versions, info.Version)
		}
	}
	out := make([]Comparison, 0, len(versions))
	for _, v := range versions {
		f, err := r.Get(v)
		if err != nil {
			return nil, err
		}
		info, _ := r.Info(v)
		out = append(out, Comparison{Version: v, Total: Sum(f, readings, cfg), HistoricalMAE: info.HistoricalMAE})
	}
	return out, nil
}
