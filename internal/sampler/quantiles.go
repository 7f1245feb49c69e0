package sampler

import "sort"

// Median returns the median grade. For even-sized input it is the mean of
// the two middle values.
func Median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := sortedCopy(vals)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Quartiles returns the 25th and 75th percentile cut points using the
// exclusive four-quantile method with linear interpolation. Inputs of two
// or three values extrapolate past the observed range; a single-value
// input returns that value for both.
func Quartiles(vals []float64) (q1, q3 float64) {
	sorted := sortedCopy(vals)
	return quantile(sorted, 1, 4), quantile(sorted, 3, 4)
}

func quantile(sorted []float64, i, n int) float64 {
	ld := len(sorted)
	if ld == 0 {
		return 0
	}
	if ld == 1 {
		return sorted[0]
	}

	// Cut points sit at rank i*(ld+1)/n; j is clamped to the data range
	// first, so small inputs extrapolate past min/max.
	m := ld + 1
	j := (i * m) / n
	if j < 1 {
		j = 1
	} else if j > ld-1 {
		j = ld - 1
	}
	delta := i*m - j*n
	return (sorted[j-1]*float64(n-delta) + sorted[j]*float64(delta)) / float64(n)
}

func sortedCopy(vals []float64) []float64 {
	out := make([]float64, len(vals))
	copy(out, vals)
	sort.Float64s(out)
	return out
}
