package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"gobrix/domain/core"
	"gobrix/internal/gdd"
)

// WeatherStore serves daily readings per region.
type WeatherStore struct {
	mu       sync.RWMutex
	readings map[core.RegionID][]gdd.DailyReading
}

// NewWeatherStore creates an empty store.
func NewWeatherStore() *WeatherStore {
	return &WeatherStore{readings: make(map[core.RegionID][]gdd.DailyReading)}
}

// Put merges readings for a region, replacing any reading on the same day.
func (s *WeatherStore) Put(region core.RegionID, readings []gdd.DailyReading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDay := make(map[time.Time]gdd.DailyReading, len(s.readings[region])+len(readings))
	for _, r := range s.readings[region] {
		byDay[day(r.Date)] = r
	}
	for _, r := range readings {
		byDay[day(r.Date)] = r
	}
	merged := make([]gdd.DailyReading, 0, len(byDay))
	for _, r := range byDay {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	s.readings[region] = merged
}

// DailyReadings returns readings with dates in [from, to] by calendar day.
func (s *WeatherStore) DailyReadings(ctx context.Context, region core.RegionID, from, to time.Time) ([]gdd.DailyReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to = day(from), day(to)
	var out []gdd.DailyReading
	for _, r := range s.readings[region] {
		d := day(r.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
