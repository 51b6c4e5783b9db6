package quality

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobrix/domain/core"
	"gobrix/domain/produce"
	"gobrix/internal/harvest"
)

func navelOrange() *produce.Cultivar {
	return &produce.Cultivar{
		ID:            "navel_orange",
		Name:          "Washington Navel",
		CropID:        "orange",
		Category:      produce.CategoryProduce,
		MaturityType:  produce.TreeFruitNonClimacteric,
		Ceiling:       produce.QualityCeiling{Min: 10, Max: 14, Optimal: 12},
		BaseTempF:     55,
		GDDToMaturity: 5100,
		GDDToPeak:     6100,
		GDDWindow:     3500,
	}
}

func indianRiver() *produce.Region {
	return &produce.Region{
		ID:      "indian_river_fl",
		Name:    "Indian River",
		State:   "FL",
		Climate: produce.Climate{AnnualGDD: 8000, AvgDailyGDD: 22, LastFrostDOY: 30, FirstFrostDOY: 350},
	}
}

func grassFedBeef() *produce.Cultivar {
	return &produce.Cultivar{
		ID:       "grass_fed_beef",
		Name:     "Grass-fed Angus",
		Category: produce.CategoryLivestock,
		Ceiling:  produce.QualityCeiling{Min: 15, Max: 25, Optimal: 20},
	}
}

func ptr[T any](v T) *T { return &v }

var asOf = time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC)

func TestPredict_Deterministic(t *testing.T) {
	p := NewPredictor()
	in := Input{CultivarID: "navel_orange", RegionID: "indian_river_fl", AsOf: asOf, CurrentGDD: ptr(5600.0)}
	ref := Reference{Cultivar: navelOrange(), Region: indianRiver()}

	first, err := p.Predict(in, ref)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := p.Predict(in, ref)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPredict_AtPeakAddsTimingBonus(t *testing.T) {
	p := NewPredictor()
	in := Input{CultivarID: "navel_orange", RegionID: "indian_river_fl", AsOf: asOf, CurrentGDD: ptr(6100.0)}

	res, err := p.Predict(in, Reference{Cultivar: navelOrange(), Region: indianRiver()})
	require.NoError(t, err)

	assert.Equal(t, 12.5, res.Score)
	assert.Equal(t, produce.TierPremium, res.Tier)
	assert.Equal(t, harvest.StatusAtPeak, res.Timing.Status)
	require.NotNil(t, res.Timing.DaysToPeak)
	assert.Equal(t, 0, *res.Timing.DaysToPeak)
	require.NotNil(t, res.Timing.DaysToHarvest)
	assert.Equal(t, 0, *res.Timing.DaysToHarvest, "days to harvest never goes negative once started")

	ripen, ok := res.Pillar(PillarRipen)
	require.True(t, ok)
	assert.Equal(t, harvest.MaxTimingBonus, ripen.Modifier)
	assert.Equal(t, LevelHigh, ripen.Confidence)
}

func TestPredict_EstimatesGDDFromClimate(t *testing.T) {
	p := NewPredictor()
	in := Input{CultivarID: "navel_orange", RegionID: "indian_river_fl", AsOf: asOf}

	res, err := p.Predict(in, Reference{Cultivar: navelOrange(), Region: indianRiver()})
	require.NoError(t, err)

	assert.True(t, res.Timing.GDDEstimated)
	assert.Equal(t, float64(asOf.YearDay()-30)*22, res.Timing.CurrentGDD)
	ripen, _ := res.Pillar(PillarRipen)
	assert.Equal(t, LevelLow, ripen.Confidence)
}

func TestPredict_ClampsToValidRange(t *testing.T) {
	c := grassFedBeef()
	c.Ceiling.Optimal = 29.8
	c.IsHeritage = true
	in := Input{
		CultivarID: c.ID, RegionID: "indian_river_fl", AsOf: asOf,
		Practices: &PracticeProfile{Method: PracticeRegenerative, CoverCrops: true, CropLoadManaged: true},
	}

	res, err := NewPredictor().Predict(in, Reference{Cultivar: c, Region: indianRiver()})
	require.NoError(t, err)
	assert.Equal(t, MaxScore, res.Score)

	c.Ceiling.Optimal = 0.1
	c.IsHeritage = false
	c.MaturityType = produce.TreeFruitNonClimacteric
	res, err = NewPredictor().Predict(Input{CultivarID: c.ID, RegionID: "indian_river_fl", AsOf: asOf,
		PostHarvest: &PostHarvest{DaysSinceHarvest: 400}}, Reference{Cultivar: c, Region: indianRiver()})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Score, MinScore)
}

func TestPredict_MeasurementPullsTowardReading(t *testing.T) {
	in := Input{CultivarID: "grass_fed_beef", RegionID: "indian_river_fl", AsOf: asOf, Measurement: &Measurement{Brix: 25}}

	res, err := NewPredictor().Predict(in, Reference{Cultivar: grassFedBeef(), Region: indianRiver()})
	require.NoError(t, err)

	assert.Equal(t, 24.0, res.Score)
	assert.Equal(t, produce.TierExceptional, res.Tier)
	enrich, _ := res.Pillar(PillarEnrich)
	assert.Equal(t, LevelHigh, enrich.Confidence)
	assert.InDelta(t, 4.0, enrich.Modifier, 1e-9)
}

func TestPredict_NonSeasonalCategoryIgnoresTiming(t *testing.T) {
	res, err := NewPredictor().Predict(Input{CultivarID: "grass_fed_beef", RegionID: "indian_river_fl", AsOf: asOf},
		Reference{Cultivar: grassFedBeef(), Region: indianRiver()})
	require.NoError(t, err)

	ripen, _ := res.Pillar(PillarRipen)
	assert.Zero(t, ripen.Modifier)
	assert.False(t, ripen.HasEvidence)
	assert.Equal(t, 20.0, res.Score)
	assert.Equal(t, produce.TierPremium, res.Tier)
}

func TestPredict_CalendarCultivar(t *testing.T) {
	c := &produce.Cultivar{
		ID: "satsuma", Name: "Owari Satsuma", Category: produce.CategoryProduce,
		MaturityType: produce.TreeFruitNonClimacteric,
		Ceiling:      produce.QualityCeiling{Min: 10, Max: 13, Optimal: 11.5},
		PeakMonths:   []int{12, 1},
	}
	res, err := NewPredictor().Predict(Input{CultivarID: "satsuma", RegionID: "indian_river_fl", AsOf: asOf},
		Reference{Cultivar: c, Region: indianRiver()})
	require.NoError(t, err)

	assert.Equal(t, harvest.StatusAtPeak, res.Timing.Status)
	assert.Equal(t, 11.8, res.Score)
	assert.True(t, res.Timing.Window.HarvestEnd.After(res.Timing.Window.HarvestStart))
}

func TestPredict_TimingStatusAgreesWithDays(t *testing.T) {
	satsuma := &produce.Cultivar{
		ID: "satsuma", Name: "Owari Satsuma", Category: produce.CategoryProduce,
		Ceiling:    produce.QualityCeiling{Min: 10, Max: 13, Optimal: 11.5},
		PeakMonths: []int{12, 1},
	}
	peach := &produce.Cultivar{
		ID: "peach", Name: "Elberta", Category: produce.CategoryProduce,
		Ceiling:       produce.QualityCeiling{Min: 10, Max: 15, Optimal: 12.5},
		BaseTempF:     45,
		GDDToMaturity: 2000,
		GDDToPeak:     2200,
		GDDWindow:     400,
	}
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name     string
		cultivar *produce.Cultivar
		asOf     time.Time
		gdd      *float64
		status   harvest.Status
		days     int
	}{
		{"calendar off season", satsuma, day(2026, time.June, 10), nil, harvest.StatusOffSeason, 174},
		{"calendar approaching", satsuma, day(2025, time.November, 20), nil, harvest.StatusApproaching, 11},
		{"calendar peak", satsuma, day(2025, time.December, 15), nil, harvest.StatusAtPeak, 0},
		{"calendar tail month", satsuma, day(2026, time.February, 15), nil, harvest.StatusInSeason, 0},
		{"gdd one day past lookahead", peach, day(2026, time.May, 1), ptr(1700.0), harvest.StatusOffSeason, 15},
		{"gdd lookahead boundary", peach, day(2026, time.May, 1), ptr(1720.0), harvest.StatusApproaching, 14},
		{"gdd started", peach, day(2026, time.May, 1), ptr(2060.0), harvest.StatusInSeason, 0},
		{"gdd peak", peach, day(2026, time.May, 1), ptr(2200.0), harvest.StatusAtPeak, 0},
		{"gdd window closed", peach, day(2026, time.October, 15), ptr(5000.0), harvest.StatusOffSeason, 215},
	}

	p := NewPredictor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{CultivarID: tt.cultivar.ID, RegionID: "indian_river_fl", AsOf: tt.asOf, CurrentGDD: tt.gdd, AvgDailyGDD: ptr(20.0)}
			res, err := p.Predict(in, Reference{Cultivar: tt.cultivar, Region: indianRiver()})
			require.NoError(t, err)

			timing := res.Timing
			require.NotNil(t, timing.DaysToHarvest)
			assert.Equal(t, tt.status, timing.Status)
			assert.Equal(t, tt.days, *timing.DaysToHarvest)

			switch timing.Status {
			case harvest.StatusInSeason, harvest.StatusAtPeak:
				assert.Zero(t, *timing.DaysToHarvest)
				assert.False(t, tt.asOf.Before(timing.Window.HarvestStart))
				assert.False(t, tt.asOf.After(timing.Window.HarvestEnd))
			default:
				assert.Positive(t, *timing.DaysToHarvest)
				assert.True(t, timing.Window.HarvestStart.After(tt.asOf))
			}
		})
	}
}

func TestPredict_ConfidenceGrowsWithEvidence(t *testing.T) {
	p := NewPredictor()
	ref := Reference{Cultivar: navelOrange(), Region: indianRiver(), Rootstock: &produce.Rootstock{ID: "carrizo", Name: "Carrizo", BrixModifier: 0.6}}

	bare, err := p.Predict(Input{CultivarID: "navel_orange", RegionID: "indian_river_fl", AsOf: asOf}, ref)
	require.NoError(t, err)

	rich, err := p.Predict(Input{
		CultivarID: "navel_orange", RegionID: "indian_river_fl", AsOf: asOf,
		CurrentGDD:   ptr(6000.0),
		RootstockID:  "carrizo",
		TreeAgeYears: ptr(12),
		Soil:         &SoilProfile{OrganicMatterPct: ptr(5.5), PH: ptr(6.5), MicrobialActivity: ptr(4.0)},
		Practices:    &PracticeProfile{Method: PracticeOrganic},
		Measurement:  &Measurement{Brix: 13.2},
	}, ref)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, bare.Confidence, 0.5)
	assert.Greater(t, rich.Confidence, bare.Confidence)
	assert.LessOrEqual(t, rich.Confidence, 0.95)
	assert.Equal(t, 5, rich.EvidenceUsed)
	assert.Less(t, bare.EvidenceUsed, rich.EvidenceUsed)
}

func TestPredict_UnknownReferences(t *testing.T) {
	p := NewPredictor()
	in := Input{CultivarID: "nope", RegionID: "indian_river_fl", AsOf: asOf}

	_, err := p.Predict(in, Reference{Region: indianRiver()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownCultivar))
	id, ok := core.ReferenceID(err)
	require.True(t, ok)
	assert.Equal(t, "nope", id)

	_, err = p.Predict(Input{CultivarID: "navel_orange", RegionID: "atlantis", AsOf: asOf}, Reference{Cultivar: navelOrange()})
	assert.True(t, errors.Is(err, core.ErrUnknownRegion))

	_, err = p.Predict(Input{CultivarID: "navel_orange", RegionID: "indian_river_fl", RootstockID: "mystery", AsOf: asOf},
		Reference{Cultivar: navelOrange(), Region: indianRiver()})
	assert.True(t, errors.Is(err, core.ErrUnknownRootstock))

	_, err = p.Predict(Input{CultivarID: "navel_orange", RegionID: "indian_river_fl"}, Reference{Cultivar: navelOrange(), Region: indianRiver()})
	assert.ErrorIs(t, err, ErrMissingAsOf)
}

func TestPredict_EveryCategoryClassifies(t *testing.T) {
	p := NewPredictor()
	for _, cat := range produce.AllCategories() {
		c := grassFedBeef()
		c.Category = cat
		res, err := p.Predict(Input{CultivarID: c.ID, RegionID: "indian_river_fl", AsOf: asOf}, Reference{Cultivar: c, Region: indianRiver()})
		require.NoError(t, err, cat)
		assert.Equal(t, produce.DefaultTierThresholds(cat).Classify(res.Score), res.Tier, cat)
	}
}

func TestPredict_CustomTiers(t *testing.T) {
	tiers := produce.DefaultTierTable()
	tiers[produce.CategoryLivestock] = produce.TierThresholds{Exceptional: 19, Premium: 17, Standard: 12}

	res, err := NewPredictor(WithTiers(tiers)).Predict(Input{CultivarID: "grass_fed_beef", RegionID: "indian_river_fl", AsOf: asOf},
		Reference{Cultivar: grassFedBeef(), Region: indianRiver()})
	require.NoError(t, err)
	assert.Equal(t, produce.TierExceptional, res.Tier)
}

func TestSoilScore(t *testing.T) {
	assert.Equal(t, 50.0, soilScore(&SoilProfile{}))
	assert.Equal(t, 87.0, soilScore(&SoilProfile{OrganicMatterPct: ptr(5.2), PH: ptr(6.4), MicrobialActivity: ptr(4.0)}))
	assert.Equal(t, 30.0, soilScore(&SoilProfile{OrganicMatterPct: ptr(0.5), PH: ptr(8.4)}))
}

func TestHeritagePillar_AgeBands(t *testing.T) {
	c := *navelOrange()
	young := heritagePillar(c, nil, ptr(2))
	prime := heritagePillar(c, nil, ptr(10))
	old := heritagePillar(c, nil, ptr(30))

	assert.Equal(t, -0.8, young.Modifier)
	assert.Zero(t, prime.Modifier)
	assert.Equal(t, -0.3, old.Modifier)
	assert.Equal(t, LevelHigh, prime.Confidence)
}

func TestHeritagePillar_EvidenceNeedsASignal(t *testing.T) {
	c := *navelOrange()
	bare := heritagePillar(c, nil, nil)
	assert.False(t, bare.HasEvidence, "the catalog ceiling alone is not evidence")
	assert.Equal(t, LevelLow, bare.Confidence)
	assert.Zero(t, bare.Modifier)

	c.IsHeritage = true
	heritage := heritagePillar(c, nil, nil)
	assert.True(t, heritage.HasEvidence)
	assert.Equal(t, LevelMedium, heritage.Confidence)

	c.IsHeritage = false
	stock := heritagePillar(c, &produce.Rootstock{ID: "carrizo", Name: "Carrizo", BrixModifier: 0.6}, nil)
	assert.True(t, stock.HasEvidence)
	assert.Equal(t, LevelHigh, stock.Confidence)

	res, err := NewPredictor().Predict(Input{CultivarID: "navel_orange", RegionID: "indian_river_fl", AsOf: asOf},
		Reference{Cultivar: navelOrange(), Region: indianRiver()})
	require.NoError(t, err)
	for _, p := range res.Pillars {
		if p.Name == PillarHeritage {
			assert.False(t, p.HasEvidence)
		}
	}
	withAge, err := NewPredictor().Predict(Input{CultivarID: "navel_orange", RegionID: "indian_river_fl", AsOf: asOf, TreeAgeYears: ptr(10)},
		Reference{Cultivar: navelOrange(), Region: indianRiver()})
	require.NoError(t, err)
	assert.Equal(t, res.EvidenceUsed+1, withAge.EvidenceUsed)
	assert.Greater(t, withAge.Confidence, res.Confidence)
}

func TestPracticePillar_Capped(t *testing.T) {
	p := practicePillar(&PracticeProfile{Method: PracticeRegenerative, CoverCrops: true, CropLoadManaged: true})
	assert.Equal(t, maxPracticeModifier, p.Modifier)

	none := practicePillar(nil)
	assert.False(t, none.HasEvidence)
	assert.Zero(t, none.Modifier)
}

func TestFreshnessFactor(t *testing.T) {
	assert.Equal(t, 0.98, FreshnessFactor(produce.TreeFruitNonClimacteric, 10, true))
	assert.InDelta(t, 0.7, FreshnessFactor(produce.TreeFruitNonClimacteric, 17, false), 1e-9)
	assert.Equal(t, 1.0, FreshnessFactor(produce.TreeFruitNonClimacteric, -3, false))

	for _, m := range produce.AllMaturityTypes() {
		for _, days := range []int{0, 3, 10, 30, 120} {
			cold := FreshnessFactor(m, days, true)
			ambient := FreshnessFactor(m, days, false)
			assert.LessOrEqual(t, cold, 1.0, "%s day %d", m, days)
			assert.Greater(t, ambient, 0.0, "%s day %d", m, days)
			assert.GreaterOrEqual(t, cold+1e-9, ambient, "%s day %d: cold chain never loses to ambient", m, days)
		}
	}
}
