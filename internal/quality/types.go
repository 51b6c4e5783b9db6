// Package quality composes a cultivar's genetic ceiling with soil, heritage,
// practice, ripeness and post-harvest evidence into a Brix prediction.
package quality

import (
	"time"

	"gobrix/domain/core"
	"gobrix/domain/produce"
	"gobrix/internal/harvest"
)

// Practice is the cultivation method reported for a farm.
type Practice string

const (
	PracticeConventional Practice = "conventional"
	PracticeIPM          Practice = "ipm"
	PracticeOrganic      Practice = "organic"
	PracticeRegenerative Practice = "regenerative"
)

// SoilProfile holds soil test results. Nil fields were not measured.
type SoilProfile struct {
	OrganicMatterPct  *float64 `json:"organic_matter_pct,omitempty"`
	PH                *float64 `json:"ph,omitempty"`
	MicrobialActivity *float64 `json:"microbial_activity,omitempty"`
}

// PracticeProfile describes how the crop was grown.
type PracticeProfile struct {
	Method          Practice `json:"method"`
	CoverCrops      bool     `json:"cover_crops"`
	CropLoadManaged bool     `json:"crop_load_managed"`
}

// PostHarvest describes handling since harvest.
type PostHarvest struct {
	DaysSinceHarvest int  `json:"days_since_harvest"`
	ColdChain        bool `json:"cold_chain"`
}

// Measurement is a direct refractometer reading.
type Measurement struct {
	Brix   float64 `json:"brix"`
	Source string  `json:"source,omitempty"`
}

// Input is a prediction request. AsOf is required; the predictor never reads the clock.
type Input struct {
	CultivarID   core.CultivarID  `json:"cultivar_id"`
	RegionID     core.RegionID    `json:"region_id"`
	AsOf         time.Time        `json:"as_of"`
	CurrentGDD   *float64         `json:"current_gdd,omitempty"`
	AvgDailyGDD  *float64         `json:"avg_daily_gdd,omitempty"`
	RootstockID  core.RootstockID `json:"rootstock_id,omitempty"`
	TreeAgeYears *int             `json:"tree_age_years,omitempty"`
	Soil         *SoilProfile     `json:"soil,omitempty"`
	Practices    *PracticeProfile `json:"practices,omitempty"`
	PostHarvest  *PostHarvest     `json:"post_harvest,omitempty"`
	Measurement  *Measurement     `json:"measurement,omitempty"`
}

// Reference bundles the reference records resolved for an Input.
// A nil Cultivar or Region is reported as an unknown reference.
type Reference struct {
	Cultivar  *produce.Cultivar
	Region    *produce.Region
	Rootstock *produce.Rootstock
}

// Level is a coarse confidence level for a single pillar.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

func (l Level) weight() float64 {
	switch l {
	case LevelHigh:
		return 1.0
	case LevelMedium:
		return 0.6
	default:
		return 0.25
	}
}

// PillarName identifies one of the five quality pillars.
type PillarName string

const (
	PillarSoil         PillarName = "soil"
	PillarHeritage     PillarName = "heritage"
	PillarAgricultural PillarName = "agricultural"
	PillarRipen        PillarName = "ripen"
	PillarEnrich       PillarName = "enrich"
)

// Pillar is one modifier with its supporting evidence.
type Pillar struct {
	Name        PillarName `json:"name"`
	Modifier    float64    `json:"modifier"`
	Confidence  Level      `json:"confidence"`
	HasEvidence bool       `json:"has_evidence"`
	Insights    []string   `json:"insights"`
}

// Timing summarizes harvest timing at AsOf.
type Timing struct {
	Status        harvest.Status `json:"status"`
	DaysToHarvest *int           `json:"days_to_harvest,omitempty"`
	DaysToPeak    *int           `json:"days_to_peak,omitempty"`
	Window        harvest.Window `json:"window"`
	GDDEstimated  bool           `json:"gdd_estimated"`
	CurrentGDD    float64        `json:"current_gdd"`
}

// Result is a point prediction.
type Result struct {
	CultivarID   core.CultivarID     `json:"cultivar_id"`
	RegionID     core.RegionID       `json:"region_id"`
	Category     produce.Category    `json:"category"`
	GeneticBase  float64             `json:"genetic_base"`
	Score        float64             `json:"score"`
	Tier         produce.QualityTier `json:"tier"`
	Confidence   float64             `json:"confidence"`
	Timing       Timing              `json:"timing"`
	Pillars      []Pillar            `json:"pillars"`
	EvidenceUsed int                 `json:"evidence_used"`
}

// Pillar returns the named pillar.
func (r Result) Pillar(name PillarName) (Pillar, bool) {
	for _, p := range r.Pillars {
		if p.Name == name {
			return p, true
		}
	}
	return Pillar{}, false
}
