package excel

import (
	"fmt"

	"gobrix/domain/core"
	"gobrix/domain/produce"
)

// Sheet names. Cultivars, Regions and Rootstocks are required.
const (
	SheetCultivars  = "Cultivars"
	SheetRegions    = "Regions"
	SheetRootstocks = "Rootstocks"
	SheetPLUCodes   = "PLUCodes"
	SheetTradeNames = "TradeNames"
)

// RawRowData represents a row of raw Excel data as string key-value pairs
type RawRowData map[string]string

// SheetData is one sheet after header mapping.
type SheetData struct {
	Name    string
	Headers []string
	Rows    []RawRowData
}

// Workbook is the reference data held in a workbook.
type Workbook struct {
	Cultivars  []*produce.Cultivar
	Regions    []*produce.Region
	Rootstocks []*produce.Rootstock
	PLUs       []produce.PLUEntry
	TradeNames map[string]core.CultivarID
}

// RowError points at the offending cell. Row is the 1-based sheet row.
type RowError struct {
	Sheet   string
	Row     int
	Column  string
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d column %q: %s", e.Sheet, e.Row, e.Column, e.Message)
}

var cultivarHeaders = []string{
	"id", "name", "crop_id", "category", "maturity_type",
	"brix_min", "brix_max", "brix_optimal",
	"base_temp_f", "gdd_to_maturity", "gdd_to_peak", "gdd_window",
	"peak_months", "is_heritage", "heat_sensitive",
}

var regionHeaders = []string{
	"id", "name", "state", "annual_gdd", "avg_daily_gdd", "chill_hours",
	"frost_free_days", "last_frost_doy", "first_frost_doy", "drought_prone",
}

var rootstockHeaders = []string{"id", "name", "brix_modifier"}

var pluHeaders = []string{"code", "crop_id", "cultivar_id", "description", "organic"}

var tradeNameHeaders = []string{"name", "cultivar_id"}
