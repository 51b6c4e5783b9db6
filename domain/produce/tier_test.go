package produce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierThresholds_Classify(t *testing.T) {
	th := DefaultTierThresholds(CategoryProduce)

	tests := []struct {
		score    float64
		expected QualityTier
	}{
		{15.2, TierExceptional},
		{14.0, TierExceptional},
		{13.99, TierPremium},
		{12.0, TierPremium},
		{10.0, TierStandard},
		{9.99, TierCommodity},
		{0, TierCommodity},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, th.Classify(tt.score), "score %.2f", tt.score)
	}
}

func TestDefaultTierThresholds_CoverEveryCategory(t *testing.T) {
	for _, c := range AllCategories() {
		th := DefaultTierThresholds(c)
		require.NoError(t, th.Validate(), "category %s", c)
	}
}

func TestTierTable_FallsBackToDefaults(t *testing.T) {
	table := TierTable{CategoryProduce: {Exceptional: 16, Premium: 13, Standard: 11}}

	assert.Equal(t, 16.0, table.For(CategoryProduce).Exceptional)
	assert.Equal(t, DefaultTierThresholds(CategorySeafood), table.For(CategorySeafood))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("eggs")
	require.NoError(t, err)
	assert.Equal(t, CategoryEggs, c)

	_, err = ParseCategory("vegetables")
	assert.Error(t, err)
}

func TestTierThresholds_ValidateRejectsOverlap(t *testing.T) {
	assert.Error(t, TierThresholds{Exceptional: 12, Premium: 12, Standard: 10}.Validate())
}
