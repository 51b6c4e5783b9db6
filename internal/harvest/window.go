// Package harvest projects harvest windows from heat-unit targets or peak
// months and classifies where "today" falls in the season.
package harvest

import (
	"math"
	"time"
)

// Status is the harvest state of a cultivar in a region.
type Status string

const (
	StatusOffSeason   Status = "off_season"
	StatusApproaching Status = "approaching"
	StatusInSeason    Status = "in_season"
	StatusAtPeak      Status = "at_peak"
)

const (
	// OptimalInset is the fraction of the window trimmed from each edge to form the optimal window.
	OptimalInset = 0.25
	// DefaultLookaheadDays is how far ahead of harvest start a crop counts as approaching.
	DefaultLookaheadDays = 14
)

// Targets are a cultivar's heat-unit milestones.
type Targets struct {
	GDDToMaturity float64 `json:"gdd_to_maturity"`
	GDDToPeak     float64 `json:"gdd_to_peak"`
	GDDWindow     float64 `json:"gdd_window"`
}

// Window is a projected harvest window. Known is false when the projection
// could not be made, for instance with a non-positive daily GDD rate.
type Window struct {
	Known        bool      `json:"known"`
	HarvestStart time.Time `json:"harvest_start"`
	HarvestEnd   time.Time `json:"harvest_end"`
	OptimalStart time.Time `json:"optimal_start"`
	OptimalEnd   time.Time `json:"optimal_end"`
	PeakDate     time.Time `json:"peak_date"`
	// NextSeason is set when this season's window had already closed and
	// the dates were rolled forward a year.
	NextSeason bool `json:"next_season,omitempty"`
}

// DaysToMilestone returns round((target-current)/rate). The boolean is
// false when the rate is not positive and the result is undefined.
func DaysToMilestone(target, current, avgDailyRate float64) (int, bool) {
	if avgDailyRate <= 0 || math.IsNaN(avgDailyRate) || math.IsInf(avgDailyRate, 0) {
		return 0, false
	}
	return int(math.Round((target - current) / avgDailyRate)), true
}

// PredictWindow projects the window from the current accumulation. A window
// that closed before today is projected into the following season so the
// result never lies wholly in the past.
func PredictWindow(t Targets, currentGDD, avgDailyRate float64, today time.Time) Window {
	today = dayOf(today)
	toStart, ok := DaysToMilestone(t.GDDToMaturity, currentGDD, avgDailyRate)
	if !ok {
		return Window{}
	}
	toEnd, _ := DaysToMilestone(t.GDDToMaturity+t.GDDWindow, currentGDD, avgDailyRate)
	toPeak, _ := DaysToMilestone(t.GDDToPeak, currentGDD, avgDailyRate)

	start := today.AddDate(0, 0, toStart)
	end := today.AddDate(0, 0, toEnd)
	peak := today.AddDate(0, 0, toPeak)
	if end.Before(start) {
		end = start
	}
	rolled := false
	for end.Before(today) {
		start, end, peak = start.AddDate(1, 0, 0), end.AddDate(1, 0, 0), peak.AddDate(1, 0, 0)
		rolled = true
	}
	w := withOptimal(start, end)
	w.PeakDate = peak
	w.NextSeason = rolled
	return w
}

// Span builds a known window between two dates, rolling the end into the
// following year when it falls before the start.
func Span(start, end time.Time) Window {
	start, end = dayOf(start), dayOf(end)
	for end.Before(start) {
		end = end.AddDate(1, 0, 0)
	}
	w := withOptimal(start, end)
	w.PeakDate = w.OptimalStart.Add(w.OptimalEnd.Sub(w.OptimalStart) / 2)
	w.PeakDate = dayOf(w.PeakDate)
	return w
}

func withOptimal(start, end time.Time) Window {
	length := int(end.Sub(start).Hours() / 24)
	inset := int(math.Round(float64(length) * OptimalInset))
	return Window{
		Known:        true,
		HarvestStart: start,
		HarvestEnd:   end,
		OptimalStart: start.AddDate(0, 0, inset),
		OptimalEnd:   end.AddDate(0, 0, -inset),
	}
}

// Classify places today relative to the window.
func (w Window) Classify(today time.Time, lookaheadDays int) Status {
	if !w.Known {
		return StatusOffSeason
	}
	today = dayOf(today)
	switch {
	case within(today, w.OptimalStart, w.OptimalEnd):
		return StatusAtPeak
	case within(today, w.HarvestStart, w.HarvestEnd):
		return StatusInSeason
	case today.Before(w.HarvestStart) && daysBetween(today, w.HarvestStart) <= lookaheadDays:
		return StatusApproaching
	default:
		return StatusOffSeason
	}
}

// DaysUntilStart returns days from today to harvest start, negative once started.
func (w Window) DaysUntilStart(today time.Time) (int, bool) {
	if !w.Known {
		return 0, false
	}
	return daysBetween(dayOf(today), w.HarvestStart), true
}

// DaysUntilPeak returns days from today to the peak date.
func (w Window) DaysUntilPeak(today time.Time) (int, bool) {
	if !w.Known {
		return 0, false
	}
	return daysBetween(dayOf(today), w.PeakDate), true
}

func within(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}

func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
