package analysis

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Population holds the population mean and standard deviation (divide by N)
// of a set of values.
type Population struct {
	N      int
	Mean   float64
	StdDev float64
}

// NewPopulation computes the population statistics of values.
func NewPopulation(values []float64) Population {
	p := Population{N: len(values)}
	if p.N == 0 {
		p.Mean, p.StdDev = math.NaN(), math.NaN()
		return p
	}
	if p.N == 1 || slices.Min(values) == slices.Max(values) {
		p.Mean = values[0]
		return p
	}
	p.Mean, p.StdDev = stat.PopMeanStdDev(values, nil)
	return p
}

// Degenerate reports whether every z-score of the population is zero: fewer
// than two values, no spread, or undefined statistics.
func (p Population) Degenerate() bool {
	if p.N <= 1 || math.IsNaN(p.Mean) || math.IsNaN(p.StdDev) {
		return true
	}
	return p.StdDev == 0
}

// ZScore returns (v - mean) / stddev, or 0 for a degenerate population.
func (p Population) ZScore(v float64) float64 {
	if p.Degenerate() {
		return 0
	}
	z := (v - p.Mean) / p.StdDev
	if math.IsNaN(z) {
		return 0
	}
	return z
}
