package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gobrix/domain/produce"
	"gobrix/internal/calibration"
	"gobrix/internal/harvest"
	"gobrix/internal/quality"
	"gobrix/internal/uncertainty"
)

func sampleInput() Input {
	return Input{
		Result: quality.Result{
			CultivarID: "navel_orange",
			RegionID:   "indian_river",
			Score:      12.5,
			Tier:       produce.TierPremium,
			Confidence: 0.82,
			Timing:     quality.Timing{Status: harvest.StatusAtPeak},
			Pillars: []quality.Pillar{
				{Name: quality.PillarSoil, Modifier: 0, Confidence: quality.LevelLow, Insights: []string{"Assumed average soil"}},
				{Name: quality.PillarRipen, Modifier: 0.5, Confidence: quality.LevelHigh},
			},
		},
		RawScore:     12.0,
		Calibration:  &calibration.Application{HasCalibration: true, Offset: 0.5, SampleCount: 7},
		Distribution: &uncertainty.BrixDistribution{Median: 12.5, Interval90: uncertainty.Interval{Lower: 11.1, Upper: 13.9}, Method: uncertainty.MethodMonteCarlo},
	}
}

func TestMarkdown_Sections(t *testing.T) {
	md := Markdown(sampleInput())
	assert.Contains(t, md, "# navel_orange from indian_river")
	assert.Contains(t, md, "**Predicted Brix:** 12.50 (premium)")
	assert.Contains(t, md, "at peak")
	assert.Contains(t, md, "| ripen | +0.50 | high |")
	assert.Contains(t, md, "- Assumed average soil")
	assert.Contains(t, md, "Adjusted from 12.00 by +0.50 using 7 measurements.")
	assert.Contains(t, md, "90% interval 11.1 to 13.9 Brix")
}

func TestMarkdown_OptionalSectionsOmitted(t *testing.T) {
	in := sampleInput()
	in.Calibration = nil
	in.Distribution = nil
	md := Markdown(in)
	assert.NotContains(t, md, "Regional calibration")
	assert.NotContains(t, md, "Uncertainty")
}

func TestHTML_RendersTable(t *testing.T) {
	out := string(HTML(sampleInput()))
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<li>Assumed average soil</li>")
}

func TestMarkdown_NextSeasonWindow(t *testing.T) {
	in := sampleInput()
	start := time.Date(2027, time.May, 18, 0, 0, 0, 0, time.UTC)
	in.Result.Timing = quality.Timing{
		Status: harvest.StatusOffSeason,
		Window: harvest.Window{Known: true, NextSeason: true, HarvestStart: start, HarvestEnd: start.AddDate(0, 0, 20), PeakDate: start.AddDate(0, 0, 10)},
	}
	md := Markdown(in)
	assert.Contains(t, md, "This season has closed. Next harvest window May 18 2027 to Jun 7 2027, peak May 28 2027.")
}
