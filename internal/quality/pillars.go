package quality

import (
	"fmt"
	"math"

	"gobrix/domain/produce"
	"gobrix/internal/harvest"
)

const (
	maxPracticeModifier = 0.5
	heritageBonus       = 0.2
	// measurementPull is how far a direct reading moves the composed score toward itself.
	measurementPull = 0.8
)

func soilScore(s *SoilProfile) float64 {
	score := 50.0
	if om := s.OrganicMatterPct; om != nil {
		switch {
		case *om >= 5.0:
			score += 15
		case *om >= 3.0:
			score += 10
		case *om >= 2.0:
			score += 5
		case *om < 1.0:
			score -= 10
		}
	}
	if ph := s.PH; ph != nil {
		switch {
		case *ph >= 6.0 && *ph <= 7.0:
			score += 10
		case *ph < 5.5 || *ph > 8.0:
			score -= 10
		}
	}
	if m := s.MicrobialActivity; m != nil {
		score += math.Min(15, *m*3)
	}
	return math.Max(0, math.Min(100, score))
}

// soilPillar returns the fractional adjustment applied to the genetic base.
func soilPillar(s *SoilProfile, region produce.Region) (Pillar, float64) {
	p := Pillar{Name: PillarSoil, Confidence: LevelLow}
	if s == nil {
		p.Insights = []string{fmt.Sprintf("No soil test on file; assuming average soil for %s", regionLabel(region))}
		return p, 0
	}
	score := soilScore(s)
	fraction := (score - 50) / 500

	measured := 0
	for _, v := range []*float64{s.OrganicMatterPct, s.PH, s.MicrobialActivity} {
		if v != nil {
			measured++
		}
	}
	p.HasEvidence = measured > 0
	switch {
	case measured == 3:
		p.Confidence = LevelHigh
	case measured > 0:
		p.Confidence = LevelMedium
	}
	p.Insights = []string{fmt.Sprintf("Soil health score %.0f/100 (%+.1f%% of genetic potential)", score, fraction*100)}
	if s.OrganicMatterPct != nil && *s.OrganicMatterPct >= 5 {
		p.Insights = append(p.Insights, "High organic matter supports mineral uptake")
	}
	return p, fraction
}

func ageModifier(years int) float64 {
	switch {
	case years <= 2:
		return -0.8
	case years <= 4:
		return -0.5
	case years <= 7:
		return -0.2
	case years <= 18:
		return 0
	case years <= 25:
		return -0.2
	default:
		return -0.3
	}
}

func heritagePillar(c produce.Cultivar, rootstock *produce.Rootstock, treeAge *int) Pillar {
	p := Pillar{Name: PillarHeritage, Confidence: LevelLow}
	p.Insights = append(p.Insights, fmt.Sprintf("%s genetic ceiling %.1f-%.1f Brix", c.Name, c.Ceiling.Min, c.Ceiling.Max))

	// The ceiling alone is a catalog default, not evidence.
	if c.IsHeritage {
		p.Modifier += heritageBonus
		p.HasEvidence = true
		p.Confidence = LevelMedium
		p.Insights = append(p.Insights, "Heritage variety selected for flavor")
	}
	if rootstock != nil {
		p.Modifier += rootstock.BrixModifier
		p.HasEvidence = true
		p.Confidence = LevelHigh
		p.Insights = append(p.Insights, fmt.Sprintf("%s rootstock %+.1f Brix", rootstock.Name, rootstock.BrixModifier))
	}
	if treeAge != nil {
		mod := ageModifier(*treeAge)
		p.Modifier += mod
		p.HasEvidence = true
		p.Confidence = LevelHigh
		if mod < 0 {
			p.Insights = append(p.Insights, fmt.Sprintf("Tree age %d years %+.1f Brix", *treeAge, mod))
		} else {
			p.Insights = append(p.Insights, fmt.Sprintf("Tree age %d years is prime bearing age", *treeAge))
		}
	}
	return p
}

func practicePillar(pr *PracticeProfile) Pillar {
	p := Pillar{Name: PillarAgricultural, Confidence: LevelLow}
	if pr == nil {
		p.Insights = []string{"Growing practices unknown; no adjustment applied"}
		return p
	}
	p.HasEvidence = true
	p.Confidence = LevelMedium

	switch pr.Method {
	case PracticeOrganic:
		p.Modifier += 0.1
		p.Insights = append(p.Insights, "Certified organic")
	case PracticeRegenerative:
		p.Modifier += 0.2
		p.Insights = append(p.Insights, "Regenerative management")
	case PracticeIPM:
		p.Modifier += 0.05
		p.Insights = append(p.Insights, "Integrated pest management")
	default:
		p.Insights = append(p.Insights, "Conventional practices")
	}
	if pr.CoverCrops {
		p.Modifier += 0.1
		p.Insights = append(p.Insights, "Cover crops in rotation")
	}
	if pr.CropLoadManaged {
		p.Modifier += 0.2
		p.Insights = append(p.Insights, "Crop load managed by thinning")
	}
	p.Modifier = math.Min(maxPracticeModifier, p.Modifier)
	return p
}

func ripenPillar(c produce.Cultivar, t Timing) Pillar {
	p := Pillar{Name: PillarRipen, Confidence: LevelLow}

	if !seasonal(c.Category) {
		p.Insights = []string{"Ripeness timing does not apply to this category"}
		return p
	}

	switch {
	case c.UsesGDD() && t.Window.Known:
		p.Modifier = harvest.TimingModifier(t.CurrentGDD, c.GDDToPeak, c.GDDWindow)
		p.HasEvidence = true
		if t.GDDEstimated {
			p.Confidence = LevelLow
			p.Insights = append(p.Insights, fmt.Sprintf("Heat units estimated from regional climate (%.0f GDD)", t.CurrentGDD))
		} else {
			p.Confidence = LevelHigh
			p.Insights = append(p.Insights, fmt.Sprintf("%.0f of %.0f GDD to peak", t.CurrentGDD, c.GDDToPeak))
		}
	case c.UsesGDD():
		p.Insights = append(p.Insights, "No usable heat-unit rate for this region; timing unknown")
		return p
	case len(c.PeakMonths) > 0:
		p.Modifier = harvest.StatusModifier(t.Status)
		p.HasEvidence = true
		p.Confidence = LevelMedium
		p.Insights = append(p.Insights, fmt.Sprintf("Calendar season %v", harvest.SortedPeakMonths(c.PeakMonths)))
	default:
		p.Insights = append(p.Insights, "No timing model for this cultivar")
		return p
	}

	switch t.Status {
	case harvest.StatusAtPeak:
		p.Insights = append(p.Insights, "Inside the optimal harvest window")
	case harvest.StatusInSeason:
		p.Insights = append(p.Insights, "In season, outside the optimal window")
	case harvest.StatusApproaching:
		p.Insights = append(p.Insights, "Season approaching; fruit not yet at full sugar")
	default:
		p.Insights = append(p.Insights, "Out of season")
	}
	return p
}

// enrichPillar applies post-harvest decay and direct measurements to the composed score.
func enrichPillar(c produce.Cultivar, composed float64, ph *PostHarvest, m *Measurement) Pillar {
	p := Pillar{Name: PillarEnrich, Confidence: LevelLow}
	adjusted := composed

	if ph != nil && c.MaturityType == "" {
		p.Insights = append(p.Insights, "No storage decay model for this product")
	} else if ph != nil {
		factor := FreshnessFactor(c.MaturityType, ph.DaysSinceHarvest, ph.ColdChain)
		adjusted *= factor
		p.HasEvidence = true
		p.Confidence = LevelMedium
		chain := "ambient"
		if ph.ColdChain {
			chain = "cold chain"
		}
		p.Insights = append(p.Insights, fmt.Sprintf("%d days since harvest (%s) retains %.0f%% of quality", ph.DaysSinceHarvest, chain, factor*100))
	}
	if m != nil {
		adjusted += measurementPull * (m.Brix - adjusted)
		p.HasEvidence = true
		p.Confidence = LevelHigh
		source := m.Source
		if source == "" {
			source = "refractometer"
		}
		p.Insights = append(p.Insights, fmt.Sprintf("Verified %.1f Brix by %s", m.Brix, source))
	}
	if !p.HasEvidence {
		p.Insights = append(p.Insights, "No post-harvest or measurement data")
	}
	p.Modifier = adjusted - composed
	return p
}

// seasonal reports whether ripeness timing applies to a category.
func seasonal(c produce.Category) bool {
	switch c {
	case produce.CategoryProduce, produce.CategoryNut:
		return true
	case produce.CategoryLivestock, produce.CategoryEggs, produce.CategorySeafood:
		return false
	default:
		panic(fmt.Sprintf("quality: unhandled category %q", c))
	}
}

func regionLabel(r produce.Region) string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID.String()
}
