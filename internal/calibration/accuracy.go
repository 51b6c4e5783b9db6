package calibration

import (
	"github.com/montanaflynn/stats"

	"gobrix/domain/calibration"
)

// Report aggregates error reduction across calibration records.
type Report struct {
	Records        int     `json:"records"`
	Active         int     `json:"active"`
	Calibrated     int     `json:"calibrated"`
	Samples        int     `json:"samples"`
	MAEBefore      float64 `json:"mae_before"`
	MAEAfter       float64 `json:"mae_after"`
	ImprovementPct float64 `json:"improvement_pct"`
	MeanOffset     float64 `json:"mean_offset"`
	MedianOffset   float64 `json:"median_offset"`
}

// Accuracy summarizes records. MAE and mean offset are weighted by sample
// count; the median is taken over per-record mean offsets.
func (p Params) Accuracy(records []*calibration.RegionalCalibration) Report {
	var r Report
	var before, after, offset float64
	offsets := make([]float64, 0, len(records))

	for _, rec := range records {
		if rec == nil {
			continue
		}
		r.Records++
		if rec.Active {
			r.Active++
			if rec.Stats.Count >= p.MinSamples {
				r.Calibrated++
			}
		}
		n := float64(rec.Stats.Count)
		if n == 0 {
			continue
		}
		r.Samples += rec.Stats.Count
		before += rec.MAEBefore * n
		after += rec.MAEAfter * n
		offset += rec.Stats.Mean * n
		offsets = append(offsets, rec.Stats.Mean)
	}
	if r.Samples == 0 {
		return r
	}

	total := float64(r.Samples)
	r.MAEBefore = round2(before / total)
	r.MAEAfter = round2(after / total)
	r.ImprovementPct = improvement(before/total, after/total)
	r.MeanOffset = round2(offset / total)
	if median, err := stats.Median(offsets); err == nil {
		r.MedianOffset = round2(median)
	}
	return r
}

// Accuracy uses the default thresholds.
func Accuracy(records []*calibration.RegionalCalibration) Report {
	return DefaultParams().Accuracy(records)
}
