package harvest

import "math"

const (
	// MaxTimingBonus is the Brix bonus at the exact peak.
	MaxTimingBonus = 0.5
	// MaxTimingPenalty caps the penalty far outside the window.
	MaxTimingPenalty = 1.5
)

// TimingModifier is the ripeness contribution to Brix for a heat-unit
// driven crop. It peaks at +MaxTimingBonus when current equals the peak,
// falls linearly to zero at the optimal-window edge (half of the window
// half-width), and turns into a parabolic penalty beyond it.
func TimingModifier(currentGDD, peakGDD, windowGDD float64) float64 {
	halfWidth := windowGDD / 2
	if halfWidth <= 0 {
		halfWidth = 1
	}
	optimalHalf := halfWidth * (1 - 2*OptimalInset)
	d := math.Abs(currentGDD - peakGDD)

	if d <= optimalHalf {
		return MaxTimingBonus * (1 - d/optimalHalf)
	}
	excess := (d - optimalHalf) / halfWidth
	return -math.Min(excess*excess, MaxTimingPenalty)
}

// StatusModifier is the ripeness contribution for calendar-driven crops.
func StatusModifier(s Status) float64 {
	switch s {
	case StatusAtPeak:
		return 0.3
	case StatusInSeason:
		return 0
	case StatusApproaching:
		return -0.5
	default:
		return -1.0
	}
}
