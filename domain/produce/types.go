package produce

import (
	"fmt"

	"gobrix/domain/core"
)

// Category is the top-level product family. Quality scales and tier
// thresholds differ per category, so every switch over Category must list
// all members of AllCategories.
type Category string

const (
	CategoryProduce   Category = "produce"
	CategoryNut       Category = "nut"
	CategoryLivestock Category = "livestock"
	CategoryEggs      Category = "eggs"
	CategorySeafood   Category = "seafood"
)

// AllCategories lists every Category in declaration order.
func AllCategories() []Category {
	return []Category{CategoryProduce, CategoryNut, CategoryLivestock, CategoryEggs, CategorySeafood}
}

// ParseCategory converts a stored label into a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range AllCategories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown product category %q", s)
}

// MaturityType determines how a crop ripens and how it holds after harvest.
type MaturityType string

const (
	TreeFruitNonClimacteric MaturityType = "tree_fruit_non_climacteric"
	TreeFruitClimacteric    MaturityType = "tree_fruit_climacteric"
	VineClimacteric         MaturityType = "vine_climacteric"
	VineNonClimacteric      MaturityType = "vine_non_climacteric"
	BerryNonClimacteric     MaturityType = "berry_non_climacteric"
	RootVegetable           MaturityType = "root_vegetable"
	LeafyGreen              MaturityType = "leafy_green"
	TropicalClimacteric     MaturityType = "tropical_climacteric"
	Nut                     MaturityType = "nut"
)

// AllMaturityTypes lists every MaturityType.
func AllMaturityTypes() []MaturityType {
	return []MaturityType{
		TreeFruitNonClimacteric, TreeFruitClimacteric, VineClimacteric, VineNonClimacteric,
		BerryNonClimacteric, RootVegetable, LeafyGreen, TropicalClimacteric, Nut,
	}
}

// QualityCeiling is the genetic Brix range a cultivar can reach.
type QualityCeiling struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Optimal float64 `json:"optimal"`
}

// Cultivar is immutable reference data for a genetic variety.
type Cultivar struct {
	ID           core.CultivarID `json:"id"`
	Name         string          `json:"name"`
	CropID       string          `json:"crop_id"`
	Category     Category        `json:"category"`
	MaturityType MaturityType    `json:"maturity_type"`
	Ceiling      QualityCeiling  `json:"ceiling"`

	// Heat-unit model, degrees F. Zero targets mean the cultivar is calendar driven.
	BaseTempF     float64 `json:"base_temp_f"`
	GDDToMaturity float64 `json:"gdd_to_maturity"`
	GDDToPeak     float64 `json:"gdd_to_peak"`
	GDDWindow     float64 `json:"gdd_window"`

	PeakMonths    []int `json:"peak_months,omitempty"`
	IsHeritage    bool  `json:"is_heritage"`
	HeatSensitive bool  `json:"heat_sensitive"`
}

// UsesGDD reports whether harvest timing comes from heat units rather than the calendar.
func (c Cultivar) UsesGDD() bool {
	return c.GDDToMaturity > 0 && c.GDDToPeak > 0
}

// Climate summarizes a region's growing conditions.
type Climate struct {
	AnnualGDD     float64 `json:"annual_gdd"`
	AvgDailyGDD   float64 `json:"avg_daily_gdd"`
	ChillHours    int     `json:"chill_hours"`
	FrostFreeDays int     `json:"frost_free_days"`
	LastFrostDOY  int     `json:"last_frost_doy"`
	FirstFrostDOY int     `json:"first_frost_doy"`
}

// Region is immutable reference data for a growing region.
type Region struct {
	ID           core.RegionID `json:"id"`
	Name         string        `json:"name"`
	State        string        `json:"state"`
	Climate      Climate       `json:"climate"`
	DroughtProne bool          `json:"drought_prone"`
}

// Rootstock modifies a grafted cultivar's genetic potential.
type Rootstock struct {
	ID           core.RootstockID `json:"id"`
	Name         string           `json:"name"`
	BrixModifier float64          `json:"brix_modifier"`
}
