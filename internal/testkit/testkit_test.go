package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobrix/domain/produce"
)

func TestFixtures_CoverEveryCategory(t *testing.T) {
	seen := map[produce.Category]bool{}
	for _, c := range Cultivars() {
		seen[c.Category] = true
		assert.LessOrEqual(t, c.Ceiling.Min, c.Ceiling.Optimal, c.ID)
		assert.LessOrEqual(t, c.Ceiling.Optimal, c.Ceiling.Max, c.ID)
	}
	for _, c := range produce.AllCategories() {
		assert.True(t, seen[c], "no fixture for %s", c)
	}
	require.NotNil(t, Cultivar(NavelOrange))
	require.NotNil(t, Region(IndianRiver))
	assert.Nil(t, Cultivar("missing"))
}

func TestGenerateWeather_Deterministic(t *testing.T) {
	cfg := DefaultWeatherConfig()
	a := GenerateWeather(cfg)
	b := GenerateWeather(cfg)

	require.Len(t, a, 365)
	assert.Equal(t, a, b)
	for _, r := range a {
		assert.LessOrEqual(t, r.TMinF, r.TMaxF)
	}

	cfg.Seed = 7
	assert.NotEqual(t, a, GenerateWeather(cfg))
}
