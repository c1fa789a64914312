package dataprocessing

import (
	"math"
	"sort"
)

// maxAbs returns the largest magnitude in x
func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// mean computes the average of a slice. Values are scaled by their largest
// magnitude first so finite input never overflows.
func mean(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	scale := maxAbs(x)
	if scale == 0 {
		return 0
	}
	m := 0.0
	for i, v := range x {
		m += (v/scale - m) / float64(i+1)
	}
	return m * scale
}

// sampleStd computes the n-1 standard deviation. ok is false below two
// values or when the result does not fit in a float64.
func sampleStd(x []float64) (std float64, ok bool) {
	n := len(x)
	if n < 2 {
		return 0, false
	}
	scale := maxAbs(x)
	if scale == 0 {
		return 0, true
	}
	m := mean(x) / scale
	sumSq := 0.0
	for _, v := range x {
		d := v/scale - m
		sumSq += d * d
	}
	std = math.Sqrt(sumSq/float64(n-1)) * scale
	if math.IsInf(std, 0) || math.IsNaN(std) {
		return 0, false
	}
	return std, true
}

// percentileSorted returns the p-th percentile (0 <= p <= 100) of an
// ascending slice by linear interpolation between closest ranks.
func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}
	rank := p / 100 * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	weight := rank - float64(lower)
	if upper >= n {
		return sorted[lower]
	}
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// summarize computes the describe-style summary of a non-empty sample
func summarize(x []float64) NumericSummary {
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	s := NumericSummary{
		Count: len(x),
		Mean:  mean(x),
		Min:   sorted[0],
		P25:   percentileSorted(sorted, 25),
		P50:   percentileSorted(sorted, 50),
		P75:   percentileSorted(sorted, 75),
		Max:   sorted[len(sorted)-1],
	}
	if std, ok := sampleStd(x); ok {
		s.Std = &std
	}
	return s
}
