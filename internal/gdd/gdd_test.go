package gdd

import (
	"testing"
	"time"

	"gobrix/domain/produce"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSimple_Daily(t *testing.T) {
	cfg := Config{BaseTemp: 50}

	tests := []struct {
		name     string
		tMax     float64
		tMin     float64
		expected float64
	}{
		{"warm day", 80, 60, 20},
		{"at base", 55, 45, 0},
		{"cold day never negative", 40, 20, 0},
		{"hot day uncapped", 100, 70, 35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simple{}.Daily(DailyReading{TMaxF: tt.tMax, TMinF: tt.tMin}, cfg)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestHeatCapped_ClampsBeforeAveraging(t *testing.T) {
	r := DailyReading{TMaxF: 100, TMinF: 70}

	v1 := Simple{}.Daily(r, Config{BaseTemp: 50})
	v2 := HeatCapped{}.Daily(r, Config{BaseTemp: 50})
	v2Custom := HeatCapped{}.Daily(r, Config{BaseTemp: 50, HeatCap: ptr(90)})

	assert.InDelta(t, 35, v1, 1e-9)
	assert.InDelta(t, 28, v2, 1e-9, "(86+70)/2 - 50")
	assert.InDelta(t, 30, v2Custom, 1e-9, "(90+70)/2 - 50")

	// Below the cap v2 equals v1.
	mild := DailyReading{TMaxF: 80, TMinF: 60}
	assert.Equal(t, Simple{}.Daily(mild, Config{BaseTemp: 50}), HeatCapped{}.Daily(mild, Config{BaseTemp: 50}))
}

func TestWaterStressed_ScalesV2(t *testing.T) {
	r := DailyReading{TMaxF: 80, TMinF: 60}
	cfg := Config{BaseTemp: 50}

	assert.InDelta(t, 20, WaterStressed{}.Daily(r, cfg), 1e-9, "no stress equals v2")

	cfg.WaterStress = ptr(0.75)
	assert.InDelta(t, 15, WaterStressed{}.Daily(r, cfg), 1e-9)

	cfg.WaterStress = ptr(0.1)
	assert.InDelta(t, 10, WaterStressed{}.Daily(r, cfg), 1e-9, "modifier floors at 0.5")

	r.WaterStress = 0.9
	assert.InDelta(t, 18, WaterStressed{}.Daily(r, cfg), 1e-9, "reading modifier wins")
}

func TestAccumulate_InclusiveRange(t *testing.T) {
	readings := []DailyReading{
		{Date: day(2025, time.June, 1), TMaxF: 80, TMinF: 60},
		{Date: day(2025, time.June, 2), TMaxF: 90, TMinF: 70},
		{Date: day(2025, time.June, 3).Add(15 * time.Hour), TMaxF: 70, TMinF: 50},
		{Date: day(2025, time.June, 4), TMaxF: 100, TMinF: 80},
	}
	cfg := Config{BaseTemp: 50}

	total := Accumulate(Simple{}, readings, cfg, day(2025, time.June, 1), day(2025, time.June, 3))
	assert.InDelta(t, 20+30+10, total, 1e-9)

	assert.InDelta(t, Sum(Simple{}, readings, cfg)/4, AverageDaily(Simple{}, readings, cfg), 1e-9)
	assert.Equal(t, 0.0, AverageDaily(Simple{}, nil, cfg))
}

func TestRegistry_VersionsAndLookup(t *testing.T) {
	r := DefaultRegistry()

	versions := r.Versions()
	require.Len(t, versions, 3)
	assert.Equal(t, []Version{V1, V2, V3}, []Version{versions[0].Version, versions[1].Version, versions[2].Version})

	f, err := r.Get(V3)
	require.NoError(t, err)
	assert.Equal(t, V3, f.Version())

	_, err = r.Get("v9")
	assert.Error(t, err)

	info, ok := r.Info(V1)
	require.True(t, ok)
	assert.Equal(t, StatusDeprecated, info.Status)
}

func TestRegistry_Select(t *testing.T) {
	r := DefaultRegistry()
	plain := produce.Cultivar{ID: "navel_orange"}
	sensitive := produce.Cultivar{ID: "sweet_cherry", HeatSensitive: true}
	wet := produce.Region{ID: "indian_river"}
	dry := produce.Region{ID: "central_valley", DroughtProne: true}

	assert.Equal(t, V2, r.Select(plain, wet))
	assert.Equal(t, V3, r.Select(sensitive, wet))
	assert.Equal(t, V3, r.Select(plain, dry))
}

func TestRegistry_LatestSkipsDeprecated(t *testing.T) {
	r := NewRegistry(V1)
	r.Register(Simple{}, VersionInfo{DeployedAt: day(2024, 1, 1), Status: StatusActive})
	r.Register(HeatCapped{}, VersionInfo{DeployedAt: day(2025, 1, 1), Status: StatusDeprecated})

	assert.Equal(t, V1, r.Latest())
}

func TestRegistry_Compare(t *testing.T) {
	r := DefaultRegistry()
	readings := []DailyReading{
		{Date: day(2025, 7, 1), TMaxF: 100, TMinF: 70, WaterStress: 0.5},
		{Date: day(2025, 7, 2), TMaxF: 80, TMinF: 60, WaterStress: 0.5},
	}

	cmp, err := r.Compare(readings, Config{BaseTemp: 50})
	require.NoError(t, err)
	require.Len(t, cmp, 3)

	// Each refinement can only remove heat units on hot, dry days.
	assert.InDelta(t, 55, cmp[0].Total, 1e-9)
	assert.InDelta(t, 48, cmp[1].Total, 1e-9)
	assert.InDelta(t, 24, cmp[2].Total, 1e-9)

	_, err = r.Compare(readings, Config{BaseTemp: 50}, "v7")
	assert.Error(t, err)
}
