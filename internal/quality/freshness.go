package quality

import (
	"fmt"
	"math"

	"gobrix/domain/produce"
)

type decayStep struct {
	maxDays int
	factor  float64
}

// decayCurve is a stepped table followed by a linear tail with a floor.
type decayCurve struct {
	steps     []decayStep
	tailStart int
	tailRate  float64
	floor     float64
}

func (c decayCurve) factor(days int) float64 {
	for _, s := range c.steps {
		if days <= s.maxDays {
			return s.factor
		}
	}
	return math.Max(c.floor, 1-float64(days-c.tailStart)*c.tailRate)
}

type storageCurves struct {
	cold    decayCurve
	ambient decayCurve
}

func curvesFor(m produce.MaturityType) storageCurves {
	switch m {
	case produce.TreeFruitNonClimacteric:
		return storageCurves{
			cold:    decayCurve{steps: []decayStep{{7, 1.0}, {14, 0.98}, {30, 0.95}}, tailStart: 30, tailRate: 0.01, floor: 0.8},
			ambient: decayCurve{steps: []decayStep{{3, 1.0}, {7, 0.95}}, tailStart: 7, tailRate: 0.03, floor: 0.7},
		}
	case produce.TreeFruitClimacteric:
		return storageCurves{
			cold:    decayCurve{steps: []decayStep{{5, 1.0}, {10, 0.95}, {14, 0.85}}, tailStart: 14, tailRate: 0.05, floor: 0.5},
			ambient: decayCurve{steps: []decayStep{{3, 1.0}, {5, 0.9}}, tailStart: 5, tailRate: 0.1, floor: 0.4},
		}
	case produce.VineClimacteric:
		// Refrigeration damages flavor, so cold chain earns nothing extra.
		c := decayCurve{steps: []decayStep{{2, 1.0}, {5, 0.95}, {7, 0.9}}, tailStart: 7, tailRate: 0.05, floor: 0.6}
		return storageCurves{cold: c, ambient: c}
	case produce.VineNonClimacteric:
		return storageCurves{
			cold:    decayCurve{steps: []decayStep{{3, 1.0}, {7, 0.95}, {14, 0.85}}, tailStart: 14, tailRate: 0.05, floor: 0.5},
			ambient: decayCurve{steps: []decayStep{{1, 1.0}, {3, 0.85}}, tailStart: 3, tailRate: 0.15, floor: 0.3},
		}
	case produce.BerryNonClimacteric:
		return storageCurves{
			cold:    decayCurve{steps: []decayStep{{1, 1.0}, {3, 0.95}, {5, 0.85}}, tailStart: 5, tailRate: 0.1, floor: 0.5},
			ambient: decayCurve{steps: []decayStep{{1, 0.95}, {2, 0.8}}, tailStart: 0, tailRate: 0.2, floor: 0.3},
		}
	case produce.RootVegetable:
		return storageCurves{
			cold:    decayCurve{steps: []decayStep{{30, 1.0}, {60, 0.95}}, tailStart: 60, tailRate: 0.005, floor: 0.7},
			ambient: decayCurve{steps: []decayStep{{7, 1.0}, {14, 0.9}}, tailStart: 14, tailRate: 0.03, floor: 0.5},
		}
	case produce.LeafyGreen:
		return storageCurves{
			cold:    decayCurve{steps: []decayStep{{3, 1.0}, {7, 0.9}}, tailStart: 7, tailRate: 0.08, floor: 0.3},
			ambient: decayCurve{steps: []decayStep{{1, 0.95}}, tailStart: 1, tailRate: 0.25, floor: 0.2},
		}
	case produce.TropicalClimacteric:
		return storageCurves{
			cold:    decayCurve{steps: []decayStep{{7, 1.0}, {14, 0.95}}, tailStart: 14, tailRate: 0.03, floor: 0.6},
			ambient: decayCurve{steps: []decayStep{{8, 1.0}, {10, 0.9}}, tailStart: 10, tailRate: 0.1, floor: 0.4},
		}
	case produce.Nut:
		return storageCurves{
			cold:    decayCurve{steps: []decayStep{{180, 1.0}, {365, 0.98}}, tailStart: 365, tailRate: 0.0005, floor: 0.85},
			ambient: decayCurve{steps: []decayStep{{30, 1.0}, {90, 0.95}, {180, 0.85}}, tailStart: 180, tailRate: 0.001, floor: 0.7},
		}
	default:
		panic(fmt.Sprintf("quality: no freshness curve for maturity type %q", m))
	}
}

// FreshnessFactor is the fraction of harvest quality retained after the given
// days in storage. 1.0 means no loss.
func FreshnessFactor(m produce.MaturityType, daysSinceHarvest int, coldChain bool) float64 {
	if daysSinceHarvest < 0 {
		daysSinceHarvest = 0
	}
	curves := curvesFor(m)
	if coldChain {
		return curves.cold.factor(daysSinceHarvest)
	}
	return curves.ambient.factor(daysSinceHarvest)
}
