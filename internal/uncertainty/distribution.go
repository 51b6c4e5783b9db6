// Package uncertainty turns point Brix estimates into distributions,
// confidence scores and conservative tier classifications.
package uncertainty

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"gobrix/domain/core"
	"gobrix/domain/produce"
)

// Method names how a distribution was built.
type Method string

const (
	MethodMonteCarlo Method = "monte_carlo"
	MethodParametric Method = "parametric"
	MethodEmpirical  Method = "empirical"
)

// Family is a closed-form distribution family.
type Family string

const (
	FamilyNormal    Family = "normal"
	FamilyLogNormal Family = "lognormal"
)

const (
	DefaultSamples = 1000

	MinConfidence = 0.5
	MaxConfidence = 0.99
)

// Interval is a closed range of Brix values.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Params records what a distribution was built from.
type Params struct {
	SampleCount int                `json:"sample_count,omitempty"`
	StdDev      float64            `json:"std_dev"`
	Family      Family             `json:"family,omitempty"`
	Source      string             `json:"source,omitempty"`
	Components  VarianceComponents `json:"components,omitempty"`
}

// BrixDistribution is a summary of plausible Brix values. Built per request.
type BrixDistribution struct {
	Mean       float64  `json:"mean"`
	Median     float64  `json:"median"`
	P5         float64  `json:"p5"`
	P25        float64  `json:"p25"`
	P50        float64  `json:"p50"`
	P75        float64  `json:"p75"`
	P95        float64  `json:"p95"`
	Interval90 Interval `json:"interval_90"`
	Method     Method   `json:"method"`
	Params     Params   `json:"params"`
}

var reportedPercentiles = [...]float64{0.05, 0.25, 0.50, 0.75, 0.95}

// MonteCarlo draws n samples of point plus normal noise whose variance is
// the sum of the components. n <= 0 uses DefaultSamples. A nil src uses the
// global generator.
func MonteCarlo(point float64, components VarianceComponents, n int, src rand.Source) (BrixDistribution, error) {
	if err := components.Validate(); err != nil {
		return BrixDistribution{}, err
	}
	if n <= 0 {
		n = DefaultSamples
	}
	sd := math.Sqrt(components.Total())
	noise := distuv.Normal{Mu: point, Sigma: sd, Src: src}

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = noise.Rand()
	}
	sort.Float64s(samples)

	mean, err := stats.Mean(samples)
	if err != nil {
		return BrixDistribution{}, fmt.Errorf("monte carlo mean: %w", err)
	}
	median, err := stats.Median(samples)
	if err != nil {
		return BrixDistribution{}, fmt.Errorf("monte carlo median: %w", err)
	}

	d := fromQuantiles(func(p float64) float64 {
		return stat.Quantile(p, stat.LinInterp, samples, nil)
	})
	d.Mean = mean
	d.Median = median
	d.Method = MethodMonteCarlo
	d.Params = Params{SampleCount: n, StdDev: sd, Family: FamilyNormal, Components: components}
	return d.floored(), nil
}

// NormalQuantile is the standard normal inverse CDF.
func NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// Parametric builds a closed-form distribution from a mean and standard
// deviation of the Brix value itself.
func Parametric(mean, sd float64, family Family) (BrixDistribution, error) {
	if sd < 0 || math.IsNaN(sd) || math.IsInf(sd, 0) || math.IsNaN(mean) || math.IsInf(mean, 0) {
		return BrixDistribution{}, fmt.Errorf("%w: mean %v sd %v", core.ErrInvalidDistribution, mean, sd)
	}

	var d BrixDistribution
	switch family {
	case FamilyNormal:
		d = fromQuantiles(func(p float64) float64 {
			return mean + sd*NormalQuantile(p)
		})
		d.Mean = mean
	case FamilyLogNormal:
		if mean <= 0 {
			return BrixDistribution{}, fmt.Errorf("%w: lognormal needs a positive mean, got %v", core.ErrInvalidDistribution, mean)
		}
		sigma2 := math.Log1p(sd * sd / (mean * mean))
		mu := math.Log(mean) - sigma2/2
		sigma := math.Sqrt(sigma2)
		d = fromQuantiles(func(p float64) float64 {
			return math.Exp(mu + sigma*NormalQuantile(p))
		})
		d.Mean = mean
	default:
		return BrixDistribution{}, fmt.Errorf("%w: %q", core.ErrUnsupportedFamily, family)
	}
	d.Median = d.P50
	d.Method = MethodParametric
	d.Params = Params{StdDev: sd, Family: family}
	return d.floored(), nil
}

// Empirical summarizes raw measurements using order statistics.
func Empirical(values []float64, source string) (BrixDistribution, error) {
	if len(values) == 0 {
		return BrixDistribution{}, core.NewEmptyDatasetError(source)
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean, err := stats.Mean(sorted)
	if err != nil {
		return BrixDistribution{}, fmt.Errorf("empirical mean: %w", err)
	}
	median, err := stats.Median(sorted)
	if err != nil {
		return BrixDistribution{}, fmt.Errorf("empirical median: %w", err)
	}
	sd := 0.0
	if len(sorted) > 1 {
		if sd, err = stats.StandardDeviationSample(sorted); err != nil {
			return BrixDistribution{}, fmt.Errorf("empirical spread: %w", err)
		}
	}

	d := fromQuantiles(func(p float64) float64 {
		return stat.Quantile(p, stat.Empirical, sorted, nil)
	})
	d.Mean = mean
	d.Median = median
	d.Method = MethodEmpirical
	d.Params = Params{SampleCount: len(sorted), StdDev: sd, Source: source}
	return d.floored(), nil
}

func fromQuantiles(q func(p float64) float64) BrixDistribution {
	var v [len(reportedPercentiles)]float64
	for i, p := range reportedPercentiles {
		v[i] = q(p)
	}
	return BrixDistribution{P5: v[0], P25: v[1], P50: v[2], P75: v[3], P95: v[4]}
}

// floored clamps the lower tail at zero; Brix cannot be negative.
func (d BrixDistribution) floored() BrixDistribution {
	d.P5 = math.Max(0, d.P5)
	d.Interval90 = Interval{Lower: d.P5, Upper: d.P95}
	return d
}

// Confidence maps spread relative to the mean into [0.5, 0.99]. Narrower
// distributions score higher.
func Confidence(d BrixDistribution) float64 {
	if d.Mean <= 0 || math.IsNaN(d.Mean) {
		return MinConfidence
	}
	spread := (d.P95 - d.P5) / (2 * d.Mean)
	return math.Max(MinConfidence, math.Min(MaxConfidence, 1-spread))
}

// ClassifyConservative assigns a tier from the 25th percentile so a tier is
// never claimed on the strength of an optimistic centre.
func ClassifyConservative(d BrixDistribution, thresholds produce.TierThresholds) produce.QualityTier {
	return thresholds.Classify(d.P25)
}
