package quality

import (
	"fmt"
	"math"
	"slices"
	"time"

	"gobrix/domain/core"
	"gobrix/domain/produce"
	"gobrix/internal/harvest"
)

const (
	MinScore = 0.0
	MaxScore = 30.0

	baseConfidence     = 0.5
	confidenceHeadroom = 0.45
)

// ErrMissingAsOf is returned when an input carries no evaluation date.
var ErrMissingAsOf = core.ErrMissingAsOf

// Predictor is a deterministic point-estimate predictor.
type Predictor struct {
	tiers     produce.TierTable
	lookahead int
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithTiers overrides tier thresholds per category.
func WithTiers(t produce.TierTable) Option {
	return func(p *Predictor) { p.tiers = t }
}

// WithLookahead sets how many days before harvest start count as approaching.
func WithLookahead(days int) Option {
	return func(p *Predictor) {
		if days > 0 {
			p.lookahead = days
		}
	}
}

// NewPredictor creates a predictor with default tiers and lookahead.
func NewPredictor(opts ...Option) *Predictor {
	p := &Predictor{tiers: produce.DefaultTierTable(), lookahead: harvest.DefaultLookaheadDays}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tiers returns the predictor's tier table.
func (p *Predictor) Tiers() produce.TierTable {
	return p.tiers
}

// Predict produces a point estimate. Missing reference records fail fast
// with the offending id.
func (p *Predictor) Predict(in Input, ref Reference) (Result, error) {
	if ref.Cultivar == nil || ref.Cultivar.ID != in.CultivarID {
		return Result{}, core.NewUnknownCultivarError(in.CultivarID)
	}
	if ref.Region == nil || ref.Region.ID != in.RegionID {
		return Result{}, core.NewUnknownRegionError(in.RegionID)
	}
	if in.RootstockID != "" && (ref.Rootstock == nil || ref.Rootstock.ID != in.RootstockID) {
		return Result{}, core.NewUnknownRootstockError(in.RootstockID)
	}
	if in.AsOf.IsZero() {
		return Result{}, ErrMissingAsOf
	}
	cultivar, err := normalizeCultivar(*ref.Cultivar)
	if err != nil {
		return Result{}, err
	}
	region := *ref.Region

	timing := p.timing(cultivar, region, in)
	base := cultivar.Ceiling.Optimal

	soil, soilFraction := soilPillar(in.Soil, region)
	soil.Modifier = base * soilFraction
	var rootstock *produce.Rootstock
	if in.RootstockID != "" {
		rootstock = ref.Rootstock
	}
	heritage := heritagePillar(cultivar, rootstock, in.TreeAgeYears)
	practice := practicePillar(in.Practices)
	ripen := ripenPillar(cultivar, timing)

	composed := base + soil.Modifier + heritage.Modifier + practice.Modifier + ripen.Modifier
	enrich := enrichPillar(cultivar, composed, in.PostHarvest, in.Measurement)

	score := roundTo(clamp(composed+enrich.Modifier, MinScore, MaxScore), 2)
	pillars := []Pillar{soil, heritage, practice, ripen, enrich}
	for i := range pillars {
		pillars[i].Modifier = roundTo(pillars[i].Modifier, 3)
	}

	confidence, evidence := overallConfidence(pillars)
	return Result{
		CultivarID:   cultivar.ID,
		RegionID:     region.ID,
		Category:     cultivar.Category,
		GeneticBase:  base,
		Score:        score,
		Tier:         p.tiers.For(cultivar.Category).Classify(score),
		Confidence:   confidence,
		Timing:       timing,
		Pillars:      pillars,
		EvidenceUsed: evidence,
	}, nil
}

func (p *Predictor) timing(c produce.Cultivar, r produce.Region, in Input) Timing {
	t := Timing{Status: harvest.StatusOffSeason}

	if c.UsesGDD() {
		rate := r.Climate.AvgDailyGDD
		if in.AvgDailyGDD != nil {
			rate = *in.AvgDailyGDD
		}
		if in.CurrentGDD != nil {
			t.CurrentGDD = *in.CurrentGDD
		} else {
			t.CurrentGDD = EstimateSeasonGDD(r, in.AsOf)
			t.GDDEstimated = true
		}
		t.Window = harvest.PredictWindow(harvest.Targets{
			GDDToMaturity: c.GDDToMaturity,
			GDDToPeak:     c.GDDToPeak,
			GDDWindow:     c.GDDWindow,
		}, t.CurrentGDD, rate, in.AsOf)
	} else if len(c.PeakMonths) > 0 {
		t.Window = harvest.CalendarWindow(c.PeakMonths, in.AsOf)
	}

	if !t.Window.Known {
		return t
	}
	t.Status = t.Window.Classify(in.AsOf, p.lookahead)
	if len(c.PeakMonths) > 0 && !c.UsesGDD() {
		t.Status = harvest.CalendarStatus(c.PeakMonths, in.AsOf.Month())
	}
	if d, ok := t.Window.DaysUntilStart(in.AsOf); ok {
		d = max(d, 0)
		t.DaysToHarvest = &d
	}
	if d, ok := t.Window.DaysUntilPeak(in.AsOf); ok {
		t.DaysToPeak = &d
	}
	return t
}

// EstimateSeasonGDD approximates accumulation since the region's last
// spring frost when no measured total is supplied.
func EstimateSeasonGDD(r produce.Region, asOf time.Time) float64 {
	doy := asOf.YearDay()
	start := r.Climate.LastFrostDOY
	days := doy - start
	if days < 0 {
		days += 365
	}
	return float64(days) * math.Max(0, r.Climate.AvgDailyGDD)
}

// overallConfidence saturates with accumulated evidence: defaulted pillars add
// nothing, each corroborated pillar adds its level's weight.
func overallConfidence(pillars []Pillar) (float64, int) {
	weight := 0.0
	evidence := 0
	for _, p := range pillars {
		if !p.HasEvidence {
			continue
		}
		evidence++
		weight += p.Confidence.weight()
	}
	c := baseConfidence + confidenceHeadroom*(1-math.Exp(-weight))
	return roundTo(c, 2), evidence
}

func normalizeCultivar(c produce.Cultivar) (produce.Cultivar, error) {
	if c.Category == "" {
		c.Category = produce.CategoryProduce
	}
	if !slices.Contains(produce.AllCategories(), c.Category) {
		return c, fmt.Errorf("cultivar %s: unknown category %q", c.ID, c.Category)
	}
	if c.MaturityType != "" && !slices.Contains(produce.AllMaturityTypes(), c.MaturityType) {
		return c, fmt.Errorf("cultivar %s: unknown maturity type %q", c.ID, c.MaturityType)
	}
	if c.Ceiling.Optimal == 0 {
		c.Ceiling.Optimal = (c.Ceiling.Min + c.Ceiling.Max) / 2
	}
	return c, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
