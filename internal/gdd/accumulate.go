package gdd

import "time"

// Sum adds the daily heat units of every reading.
func Sum(f Formula, readings []DailyReading, cfg Config) float64 {
	total := 0.0
	for _, r := range readings {
		total += f.Daily(r, cfg)
	}
	return total
}

// Accumulate sums heat units for readings dated within [from, to], by calendar day.
func Accumulate(f Formula, readings []DailyReading, cfg Config, from, to time.Time) float64 {
	start, end := truncateDay(from), truncateDay(to)
	total := 0.0
	for _, r := range readings {
		d := truncateDay(r.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		total += f.Daily(r, cfg)
	}
	return total
}

// AverageDaily returns the mean daily heat units over the readings, 0 when empty.
func AverageDaily(f Formula, readings []DailyReading, cfg Config) float64 {
	if len(readings) == 0 {
		return 0
	}
	return Sum(f, readings, cfg) / float64(len(readings))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
