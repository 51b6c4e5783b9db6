package excel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gobrix/domain/core"
	"gobrix/domain/produce"
	"gobrix/internal"
	"gobrix/internal/testkit"
)

func quietLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError)
}

func TestWorkbook_ExportThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.xlsx")
	src := &Workbook{
		Cultivars:  testkit.Cultivars(),
		Regions:    testkit.Regions(),
		Rootstocks: testkit.Rootstocks(),
		PLUs:       testkit.PLUs(),
		TradeNames: testkit.TradeNames(),
	}
	require.NoError(t, WriteWorkbook(path, src))

	wb, err := NewWorkbookReader(path, quietLogger()).Read()
	require.NoError(t, err)

	require.Len(t, wb.Cultivars, len(src.Cultivars))
	require.Len(t, wb.Regions, len(src.Regions))
	require.Len(t, wb.Rootstocks, len(src.Rootstocks))
	assert.Len(t, wb.PLUs, len(src.PLUs))
	assert.Equal(t, src.TradeNames, wb.TradeNames)

	satsuma := testkit.Cultivar(testkit.Satsuma)
	for _, c := range wb.Cultivars {
		if c.ID == testkit.Satsuma {
			assert.Equal(t, satsuma.PeakMonths, c.PeakMonths)
			assert.Equal(t, satsuma.Ceiling, c.Ceiling)
			assert.Equal(t, satsuma.Category, c.Category)
		}
	}
	assert.Equal(t, *testkit.Region(testkit.CentralValley), *findRegion(wb, testkit.CentralValley))
}

func findRegion(wb *Workbook, id core.RegionID) *produce.Region {
	for _, r := range wb.Regions {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func TestWorkbook_MissingRequiredSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", SheetCultivars))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := NewWorkbookReader(path, quietLogger()).Read()
	assert.ErrorContains(t, err, `missing required sheet "Regions"`)
}

func TestWorkbook_RowErrorsNameTheCell(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	wb := &Workbook{
		Cultivars:  testkit.Cultivars()[:1],
		Regions:    testkit.Regions()[:1],
		Rootstocks: testkit.Rootstocks()[:1],
	}
	require.NoError(t, WriteWorkbook(path, wb))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(SheetRegions, "D2", "lots"))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	_, err = NewWorkbookReader(path, quietLogger()).Read()
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, SheetRegions, rowErr.Sheet)
	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, "annual_gdd", rowErr.Column)
}

func TestWorkbook_NotFound(t *testing.T) {
	_, err := NewWorkbookReader(filepath.Join(t.TempDir(), "nope.xlsx"), quietLogger()).Read()
	assert.ErrorContains(t, err, "workbook not found")
}

func TestRowParser_Months(t *testing.T) {
	p := rowParser{sheet: "s", row: 2, data: RawRowData{"m": "12, 1;2", "bad": "13"}}
	assert.Equal(t, []int{12, 1, 2}, p.months("m"))
	assert.NoError(t, p.err)
	assert.Nil(t, p.months("bad"))
	assert.Error(t, p.err)
}
