// Package excel imports and exports reference data as xlsx workbooks.
package excel

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gobrix/domain/core"
	"gobrix/domain/produce"
	"gobrix/internal"
)

// WorkbookReader loads reference data from an xlsx file.
type WorkbookReader struct {
	filePath string
	logger   *internal.Logger
}

// NewWorkbookReader creates a reader for filePath.
func NewWorkbookReader(filePath string, logger *internal.Logger) *WorkbookReader {
	return &WorkbookReader{filePath: filePath, logger: logger.With("workbook")}
}

// Read parses every sheet into reference records.
func (r *WorkbookReader) Read() (*Workbook, error) {
	startTime := time.Now()
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("workbook not found: %s", r.filePath)
	}

	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{TradeNames: make(map[string]core.CultivarID)}

	cultivars, err := r.readSheet(f, SheetCultivars, true)
	if err != nil {
		return nil, err
	}
	for i, row := range cultivars.Rows {
		c, err := parseCultivar(row, i+2)
		if err != nil {
			return nil, err
		}
		wb.Cultivars = append(wb.Cultivars, c)
	}

	regions, err := r.readSheet(f, SheetRegions, true)
	if err != nil {
		return nil, err
	}
	for i, row := range regions.Rows {
		reg, err := parseRegion(row, i+2)
		if err != nil {
			return nil, err
		}
		wb.Regions = append(wb.Regions, reg)
	}

	rootstocks, err := r.readSheet(f, SheetRootstocks, true)
	if err != nil {
		return nil, err
	}
	for i, row := range rootstocks.Rows {
		rs, err := parseRootstock(row, i+2)
		if err != nil {
			return nil, err
		}
		wb.Rootstocks = append(wb.Rootstocks, rs)
	}

	plus, err := r.readSheet(f, SheetPLUCodes, false)
	if err != nil {
		return nil, err
	}
	for i, row := range plus.Rows {
		e, err := parsePLU(row, i+2)
		if err != nil {
			return nil, err
		}
		wb.PLUs = append(wb.PLUs, e)
	}

	names, err := r.readSheet(f, SheetTradeNames, false)
	if err != nil {
		return nil, err
	}
	for i, row := range names.Rows {
		p := rowParser{sheet: SheetTradeNames, row: i + 2, data: row}
		name := p.required("name")
		id := p.required("cultivar_id")
		if p.err != nil {
			return nil, p.err
		}
		wb.TradeNames[name] = core.CultivarID(id)
	}

	r.logger.Info("loaded %d cultivars, %d regions, %d rootstocks, %d PLUs, %d trade names in %.2fms",
		len(wb.Cultivars), len(wb.Regions), len(wb.Rootstocks), len(wb.PLUs), len(wb.TradeNames),
		float64(time.Since(startTime).Nanoseconds())/1e6)
	return wb, nil
}

// readSheet returns an empty SheetData when an optional sheet is missing.
func (r *WorkbookReader) readSheet(f *excelize.File, name string, required bool) (*SheetData, error) {
	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		if required {
			return nil, fmt.Errorf("workbook is missing required sheet %q", name)
		}
		r.logger.Debug("optional sheet %s not present", name)
		return &SheetData{Name: name}, nil
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(rows) == 0 {
		return &SheetData{Name: name}, nil
	}
	return processRows(name, rows), nil
}

// processRows maps cells to lower-cased headers and drops blank rows.
func processRows(name string, rows [][]string) *SheetData {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var data []RawRowData
	for _, row := range rows[1:] {
		rowData := make(RawRowData)
		blank := true
		for j, cell := range row {
			if j < len(headers) {
				v := strings.TrimSpace(cell)
				rowData[headers[j]] = v
				if v != "" {
					blank = false
				}
			}
		}
		if !blank {
			data = append(data, rowData)
		}
	}
	return &SheetData{Name: name, Headers: headers, Rows: data}
}

// rowParser records the first conversion error and ignores the rest.
type rowParser struct {
	sheet string
	row   int
	data  RawRowData
	err   error
}

func (p *rowParser) fail(col, msg string) {
	if p.err == nil {
		p.err = &RowError{Sheet: p.sheet, Row: p.row, Column: col, Message: msg}
	}
}

func (p *rowParser) str(col string) string {
	return p.data[col]
}

func (p *rowParser) required(col string) string {
	v := p.data[col]
	if v == "" {
		p.fail(col, "value is required")
	}
	return v
}

func (p *rowParser) number(col string) float64 {
	v := p.data[col]
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(col, fmt.Sprintf("not a number: %q", v))
	}
	return f
}

func (p *rowParser) integer(col string) int {
	v := p.data[col]
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(col, fmt.Sprintf("not an integer: %q", v))
	}
	return n
}

func (p *rowParser) flag(col string) bool {
	switch strings.ToLower(p.data[col]) {
	case "", "0", "false", "no", "n":
		return false
	case "1", "true", "yes", "y":
		return true
	default:
		p.fail(col, fmt.Sprintf("not a boolean: %q", p.data[col]))
		return false
	}
}

// months parses "12,1,2" or "12 1 2".
func (p *rowParser) months(col string) []int {
	v := p.data[col]
	if v == "" {
		return nil
	}
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	out := make([]int, 0, len(fields))
	for _, field := range fields {
		m, err := strconv.Atoi(field)
		if err != nil || m < 1 || m > 12 {
			p.fail(col, fmt.Sprintf("invalid month %q", field))
			return nil
		}
		out = append(out, m)
	}
	return out
}

func parseCultivar(row RawRowData, n int) (*produce.Cultivar, error) {
	p := rowParser{sheet: SheetCultivars, row: n, data: row}
	c := &produce.Cultivar{
		ID:           core.CultivarID(p.required("id")),
		Name:         p.str("name"),
		CropID:       p.str("crop_id"),
		MaturityType: produce.MaturityType(p.str("maturity_type")),
		Ceiling: produce.QualityCeiling{
			Min:     p.number("brix_min"),
			Max:     p.number("brix_max"),
			Optimal: p.number("brix_optimal"),
		},
		BaseTempF:     p.number("base_temp_f"),
		GDDToMaturity: p.number("gdd_to_maturity"),
		GDDToPeak:     p.number("gdd_to_peak"),
		GDDWindow:     p.number("gdd_window"),
		PeakMonths:    p.months("peak_months"),
		IsHeritage:    p.flag("is_heritage"),
		HeatSensitive: p.flag("heat_sensitive"),
	}
	if label := p.str("category"); label != "" {
		cat, err := produce.ParseCategory(label)
		if err != nil {
			p.fail("category", err.Error())
		}
		c.Category = cat
	}
	if p.err == nil && c.Ceiling.Max < c.Ceiling.Min {
		p.fail("brix_max", "must not be below brix_min")
	}
	return c, p.err
}

func parseRegion(row RawRowData, n int) (*produce.Region, error) {
	p := rowParser{sheet: SheetRegions, row: n, data: row}
	r := &produce.Region{
		ID:    core.RegionID(p.required("id")),
		Name:  p.str("name"),
		State: strings.ToUpper(p.str("state")),
		Climate: produce.Climate{
			AnnualGDD:     p.number("annual_gdd"),
			AvgDailyGDD:   p.number("avg_daily_gdd"),
			ChillHours:    p.integer("chill_hours"),
			FrostFreeDays: p.integer("frost_free_days"),
			LastFrostDOY:  p.integer("last_frost_doy"),
			FirstFrostDOY: p.integer("first_frost_doy"),
		},
		DroughtProne: p.flag("drought_prone"),
	}
	return r, p.err
}

func parseRootstock(row RawRowData, n int) (*produce.Rootstock, error) {
	p := rowParser{sheet: SheetRootstocks, row: n, data: row}
	r := &produce.Rootstock{
		ID:           core.RootstockID(p.required("id")),
		Name:         p.str("name"),
		BrixModifier: p.number("brix_modifier"),
	}
	return r, p.err
}

func parsePLU(row RawRowData, n int) (produce.PLUEntry, error) {
	p := rowParser{sheet: SheetPLUCodes, row: n, data: row}
	e := produce.PLUEntry{
		Code:        p.required("code"),
		CropID:      p.str("crop_id"),
		CultivarID:  core.CultivarID(p.str("cultivar_id")),
		Description: p.str("description"),
		Organic:     p.flag("organic"),
	}
	return e, p.err
}
