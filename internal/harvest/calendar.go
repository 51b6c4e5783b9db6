package harvest

import (
	"sort"
	"time"
)

// CalendarStatus classifies a month against a cultivar's peak months for
// products without a heat-unit model. December and January are adjacent.
func CalendarStatus(peakMonths []int, month time.Month) Status {
	if len(peakMonths) == 0 {
		return StatusOffSeason
	}
	peaks := monthSet(peakMonths)
	m := int(month)
	switch {
	case peaks[m]:
		return StatusAtPeak
	case peaks[nextMonth(m)]:
		return StatusApproaching
	case peaks[prevMonth(m)]:
		return StatusInSeason
	default:
		return StatusOffSeason
	}
}

// CalendarWindow returns the peak-month window that contains today, or the
// next one to open. In the month after a run, the month CalendarStatus calls
// in season, the run just ended is returned held open through that month.
// Windows that wrap past December end in the following year.
func CalendarWindow(peakMonths []int, today time.Time) Window {
	if len(peakMonths) == 0 {
		return Window{}
	}
	peaks := monthSet(peakMonths)
	if len(peaks) == 0 {
		return Window{}
	}
	if len(peaks) == 12 {
		y := today.Year()
		return Span(time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC))
	}

	m := int(today.Month())
	if !peaks[m] && !peaks[nextMonth(m)] && peaks[prevMonth(m)] {
		lastOfPrev := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		run := runWindow(peaks, lastOfPrev)
		return Span(run.HarvestStart, endOfMonth(today))
	}
	return runWindow(peaks, today)
}

func runWindow(peaks map[int]bool, today time.Time) Window {
	startMonth := firstMonthOfRun(peaks, today)
	endMonth := startMonth
	for peaks[nextMonth(endMonth)] {
		endMonth = nextMonth(endMonth)
	}

	year := today.Year()
	m := int(today.Month())
	if !peaks[m] && startMonth < m {
		// Next run opens after New Year.
		year++
	}
	if peaks[m] && startMonth > m {
		// Current run started last year.
		year--
	}
	endYear := year
	if endMonth < startMonth {
		endYear++
	}
	start := time.Date(year, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	return Span(start, endOfMonth(time.Date(endYear, time.Month(endMonth), 1, 0, 0, 0, 0, time.UTC)))
}

func endOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// firstMonthOfRun finds the first month of the contiguous peak run that
// contains today's month, or of the next run after it.
func firstMonthOfRun(peaks map[int]bool, today time.Time) int {
	m := int(today.Month())
	if !peaks[m] {
		for i := 0; i < 12 && !peaks[m]; i++ {
			m = nextMonth(m)
		}
		return m
	}
	for i := 0; i < 12 && peaks[prevMonth(m)]; i++ {
		m = prevMonth(m)
	}
	return m
}

// SortedPeakMonths returns the distinct valid months in ascending order.
func SortedPeakMonths(months []int) []int {
	set := monthSet(months)
	out := make([]int, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}

func monthSet(months []int) map[int]bool {
	set := make(map[int]bool, len(months))
	for _, m := range months {
		if m >= 1 && m <= 12 {
			set[m] = true
		}
	}
	return set
}

func nextMonth(m int) int { return m%12 + 1 }

func prevMonth(m int) int { return (m+10)%12 + 1 }
