package inference

import (
	"math"

	"github.com/montanaflynn/stats"

	"gocausal/domain/core"
)

// EmpiricalDistribution holds the ordered trial results of one simulation.
// Order carries no statistical meaning; it is preserved so a fixed seed
// reproduces a bit-identical sequence. Immutable once built.
type EmpiricalDistribution struct {
	values []float64
}

// NewEmpiricalDistribution copies and seals a trial-result sequence
func NewEmpiricalDistribution(values []float64) *EmpiricalDistribution {
	copied := make([]float64, len(values))
	copy(copied, values)
	return &EmpiricalDistribution{values: copied}
}

// Len returns the number of trial results
func (d *EmpiricalDistribution) Len() int {
	return len(d.values)
}

// Values returns a copy of the full result sequence so callers can compute
// arbitrary derived statistics without re-running the simulation
func (d *EmpiricalDistribution) Values() []float64 {
	out := make([]float64, len(d.values))
	copy(out, d.values)
	return out
}

// Mean returns the sample mean of the trial results
func (d *EmpiricalDistribution) Mean() float64 {
	m, err := stats.Mean(d.values)
	if err != nil {
		return math.NaN()
	}
	return m
}

// Variance returns the sample variance of the trial results
func (d *EmpiricalDistribution) Variance() float64 {
	v, err := stats.SampleVariance(d.values)
	if err != nil {
		return math.NaN()
	}
	return v
}

// StdDev returns the sample standard deviation, the Monte Carlo estimate of
// the estimator's standard error
func (d *EmpiricalDistribution) StdDev() float64 {
	return math.Sqrt(d.Variance())
}

// Percentile returns the p-th percentile (0 < p <= 100) of the results
func (d *EmpiricalDistribution) Percentile(p float64) float64 {
	v, err := stats.Percentile(d.values, p)
	if err != nil {
		return math.NaN()
	}
	return v
}

// TailProbability returns the fraction of results >= threshold
func (d *EmpiricalDistribution) TailProbability(threshold float64) float64 {
	if len(d.values) == 0 {
		return 0
	}
	count := 0
	for _, v := range d.values {
		if v >= threshold {
			count++
		}
	}
	return float64(count) / float64(len(d.values))
}

// AbsTailProbability returns the fraction of results with |value| >= |threshold|
func (d *EmpiricalDistribution) AbsTailProbability(threshold float64) float64 {
	if len(d.values) == 0 {
		return 0
	}
	count := 0
	abs := math.Abs(threshold)
	for _, v := range d.values {
		if math.Abs(v) >= abs {
			count++
		}
	}
	return float64(count) / float64(len(d.values))
}

// Fingerprint hashes the sealed sequence for determinism checks
func (d *EmpiricalDistribution) Fingerprint() core.ResultHash {
	return core.ComputeResultHash(d.values)
}

// HistogramBin is one bucket of a fixed-width histogram
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram buckets the results into binCount fixed-width bins for the
// presentation layer. Degenerate distributions collapse into a single bin.
func (d *EmpiricalDistribution) Histogram(binCount int) []HistogramBin {
	if len(d.values) == 0 || binCount <= 0 {
		return nil
	}
	lo, _ := stats.Min(d.values)
	hi, _ := stats.Max(d.values)
	if lo == hi {
		return []HistogramBin{{Lower: lo, Upper: hi, Count: len(d.values)}}
	}

	width := (hi - lo) / float64(binCount)
	bins := make([]HistogramBin, binCount)
	for i := range bins {
		bins[i].Lower = lo + float64(i)*width
		bins[i].Upper = bins[i].Lower + width
	}
	for _, v := range d.values {
		idx := int((v - lo) / width)
		if idx >= binCount {
			idx = binCount - 1 // max lands in last bin
		}
		bins[idx].Count++
	}
	return bins
}
