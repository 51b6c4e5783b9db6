// Package testkit provides reference fixtures and synthetic weather for
// tests and demo mode.
package testkit

import (
	"gobrix/domain/core"
	"gobrix/domain/produce"
)

// Fixture ids.
const (
	NavelOrange        core.CultivarID = "navel_orange"
	CaraCara           core.CultivarID = "cara_cara"
	Honeycrisp         core.CultivarID = "honeycrisp"
	ElbertaPeach       core.CultivarID = "elberta_peach"
	ChandlerStrawberry core.CultivarID = "chandler_strawberry"
	Satsuma            core.CultivarID = "satsuma"
	DesirablePecan     core.CultivarID = "desirable_pecan"
	GrassFedBeef       core.CultivarID = "grass_fed_beef"
	PastureEggs        core.CultivarID = "pasture_raised_eggs"
	WildSockeye        core.CultivarID = "wild_sockeye"

	IndianRiver     core.RegionID = "indian_river_fl"
	CentralValley   core.RegionID = "central_valley_ca"
	Yakima          core.RegionID = "yakima_valley_wa"
	GeorgiaPiedmont core.RegionID = "georgia_piedmont"

	Carrizo    core.RootstockID = "carrizo"
	C35        core.RootstockID = "c35"
	SourOrange core.RootstockID = "sour_orange"
	Swingle    core.RootstockID = "swingle"
	RoughLemon core.RootstockID = "rough_lemon"
)

// Cultivars returns fresh copies of every fixture cultivar.
func Cultivars() []*produce.Cultivar {
	return []*produce.Cultivar{
		{
			ID: NavelOrange, Name: "Washington Navel", CropID: "orange",
			Category: produce.CategoryProduce, MaturityType: produce.TreeFruitNonClimacteric,
			Ceiling:   produce.QualityCeiling{Min: 10, Max: 14, Optimal: 12},
			BaseTempF: 55, GDDToMaturity: 5100, GDDToPeak: 6100, GDDWindow: 3500,
		},
		{
			ID: CaraCara, Name: "Cara Cara", CropID: "orange",
			Category: produce.CategoryProduce, MaturityType: produce.TreeFruitNonClimacteric,
			Ceiling:   produce.QualityCeiling{Min: 11, Max: 15, Optimal: 13},
			BaseTempF: 55, GDDToMaturity: 5100, GDDToPeak: 6000, GDDWindow: 3200,
		},
		{
			ID: Honeycrisp, Name: "Honeycrisp", CropID: "apple",
			Category: produce.CategoryProduce, MaturityType: produce.TreeFruitClimacteric,
			Ceiling:   produce.QualityCeiling{Min: 12, Max: 16, Optimal: 14},
			BaseTempF: 50, GDDToMaturity: 2200, GDDToPeak: 2400, GDDWindow: 300,
		},
		{
			ID: ElbertaPeach, Name: "Elberta", CropID: "peach", IsHeritage: true, HeatSensitive: true,
			Category: produce.CategoryProduce, MaturityType: produce.TreeFruitClimacteric,
			Ceiling:   produce.QualityCeiling{Min: 10, Max: 15, Optimal: 12.5},
			BaseTempF: 45, GDDToMaturity: 1800, GDDToPeak: 2000, GDDWindow: 400,
		},
		{
			ID: ChandlerStrawberry, Name: "Chandler", CropID: "strawberry",
			Category: produce.CategoryProduce, MaturityType: produce.BerryNonClimacteric,
			Ceiling:    produce.QualityCeiling{Min: 7, Max: 12, Optimal: 9.5},
			PeakMonths: []int{3, 4, 5},
		},
		{
			ID: Satsuma, Name: "Owari Satsuma", CropID: "mandarin",
			Category: produce.CategoryProduce, MaturityType: produce.TreeFruitNonClimacteric,
			Ceiling:    produce.QualityCeiling{Min: 10, Max: 13, Optimal: 11.5},
			PeakMonths: []int{11, 12, 1},
		},
		{
			ID: DesirablePecan, Name: "Desirable", CropID: "pecan",
			Category: produce.CategoryNut, MaturityType: produce.Nut,
			Ceiling:    produce.QualityCeiling{Min: 17, Max: 24, Optimal: 21},
			PeakMonths: []int{10, 11},
		},
		{
			ID: GrassFedBeef, Name: "Grass-finished Angus", CropID: "beef",
			Category: produce.CategoryLivestock,
			Ceiling: produce.QualityCeiling{Min: 15, Max: 26, Optimal: 20},
		},
		{
			ID: PastureEggs, Name: "Pasture-raised eggs", CropID: "eggs",
			Category: produce.CategoryEggs,
			Ceiling: produce.QualityCeiling{Min: 14, Max: 24, Optimal: 19},
		},
		{
			ID: WildSockeye, Name: "Wild Sockeye", CropID: "salmon",
			Category: produce.CategorySeafood,
			Ceiling: produce.QualityCeiling{Min: 15, Max: 26, Optimal: 21},
		},
	}
}

// Regions returns fresh copies of every fixture region.
func Regions() []*produce.Region {
	return []*produce.Region{
		{
			ID: IndianRiver, Name: "Indian River", State: "FL",
			Climate: produce.Climate{AnnualGDD: 8000, AvgDailyGDD: 22, ChillHours: 150, FrostFreeDays: 350, LastFrostDOY: 30, FirstFrostDOY: 350},
		},
		{
			ID: CentralValley, Name: "Central Valley", State: "CA", DroughtProne: true,
			Climate: produce.Climate{AnnualGDD: 5500, AvgDailyGDD: 18, ChillHours: 800, FrostFreeDays: 260, LastFrostDOY: 60, FirstFrostDOY: 320},
		},
		{
			ID: Yakima, Name: "Yakima Valley", State: "WA",
			Climate: produce.Climate{AnnualGDD: 3000, AvgDailyGDD: 14, ChillHours: 1200, FrostFreeDays: 160, LastFrostDOY: 120, FirstFrostDOY: 280},
		},
		{
			ID: GeorgiaPiedmont, Name: "Georgia Piedmont", State: "GA",
			Climate: produce.Climate{AnnualGDD: 4800, AvgDailyGDD: 18, ChillHours: 850, FrostFreeDays: 220, LastFrostDOY: 90, FirstFrostDOY: 310},
		},
	}
}

// Rootstocks returns the citrus rootstocks with their Brix effects.
func Rootstocks() []*produce.Rootstock {
	return []*produce.Rootstock{
		{ID: Carrizo, Name: "Carrizo Citrange", BrixModifier: 0.6},
		{ID: C35, Name: "C-35 Citrange", BrixModifier: 0.5},
		{ID: SourOrange, Name: "Sour Orange", BrixModifier: 0.5},
		{ID: Swingle, Name: "Swingle Citrumelo", BrixModifier: -0.5},
		{ID: RoughLemon, Name: "Rough Lemon", BrixModifier: -0.7},
	}
}

// PLUs returns retail codes for the fixture crops.
func PLUs() []produce.PLUEntry {
	return []produce.PLUEntry{
		{Code: "4012", CropID: "orange", CultivarID: NavelOrange, Description: "Orange, navel, large"},
		{Code: "3110", CropID: "orange", CultivarID: CaraCara, Description: "Orange, Cara Cara"},
		{Code: "3283", CropID: "apple", CultivarID: Honeycrisp, Description: "Apple, Honeycrisp"},
		{Code: "4044", CropID: "peach", Description: "Peach, yellow, large"},
		{Code: "4323", CropID: "strawberry", CultivarID: ChandlerStrawberry, Description: "Strawberries"},
	}
}

// TradeNames maps marketing names to fixture cultivars.
func TradeNames() map[string]core.CultivarID {
	return map[string]core.CultivarID{
		"Cara Cara":  CaraCara,
		"Honeycrisp": Honeycrisp,
		"Elberta":    ElbertaPeach,
		"Chandler":   ChandlerStrawberry,
		"Satsuma":    Satsuma,
	}
}

// Cultivar returns the fixture with id, or nil.
func Cultivar(id core.CultivarID) *produce.Cultivar {
	for _, c := range Cultivars() {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Region returns the fixture with id, or nil.
func Region(id core.RegionID) *produce.Region {
	for _, r := range Regions() {
		if r.ID == id {
			return r
		}
	}
	return nil
}
