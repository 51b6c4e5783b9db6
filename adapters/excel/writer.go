package excel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook exports reference data in the layout Read accepts.
func WriteWorkbook(path string, wb *Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{SheetCultivars, cultivarHeaders, cultivarRows(wb)},
		{SheetRegions, regionHeaders, regionRows(wb)},
		{SheetRootstocks, rootstockHeaders, rootstockRows(wb)},
		{SheetPLUCodes, pluHeaders, pluRows(wb)},
		{SheetTradeNames, tradeNameHeaders, tradeNameRows(wb)},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s.name, s.headers, s.rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func cultivarRows(wb *Workbook) [][]interface{} {
	rows := make([][]interface{}, 0, len(wb.Cultivars))
	for _, c := range wb.Cultivars {
		months := make([]string, len(c.PeakMonths))
		for i, m := range c.PeakMonths {
			months[i] = strconv.Itoa(m)
		}
		rows = append(rows, []interface{}{
			c.ID.String(), c.Name, c.CropID, string(c.Category), string(c.MaturityType),
			c.Ceiling.Min, c.Ceiling.Max, c.Ceiling.Optimal,
			c.BaseTempF, c.GDDToMaturity, c.GDDToPeak, c.GDDWindow,
			strings.Join(months, ","), c.IsHeritage, c.HeatSensitive,
		})
	}
	return rows
}

func regionRows(wb *Workbook) [][]interface{} {
	rows := make([][]interface{}, 0, len(wb.Regions))
	for _, r := range wb.Regions {
		rows = append(rows, []interface{}{
			r.ID.String(), r.Name, r.State, r.Climate.AnnualGDD, r.Climate.AvgDailyGDD, r.Climate.ChillHours,
			r.Climate.FrostFreeDays, r.Climate.LastFrostDOY, r.Climate.FirstFrostDOY, r.DroughtProne,
		})
	}
	return rows
}

func rootstockRows(wb *Workbook) [][]interface{} {
	rows := make([][]interface{}, 0, len(wb.Rootstocks))
	for _, r := range wb.Rootstocks {
		rows = append(rows, []interface{}{r.ID.String(), r.Name, r.BrixModifier})
	}
	return rows
}

func pluRows(wb *Workbook) [][]interface{} {
	rows := make([][]interface{}, 0, len(wb.PLUs))
	for _, e := range wb.PLUs {
		rows = append(rows, []interface{}{e.Code, e.CropID, e.CultivarID.String(), e.Description, e.Organic})
	}
	return rows
}

func tradeNameRows(wb *Workbook) [][]interface{} {
	names := make([]string, 0, len(wb.TradeNames))
	for name := range wb.TradeNames {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([][]interface{}, 0, len(names))
	for _, name := range names {
		rows = append(rows, []interface{}{name, wb.TradeNames[name].String()})
	}
	return rows
}
