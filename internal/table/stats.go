package table

import "sort"

// Quantile returns the q-th quantile of values using linear interpolation
// between closest ranks, matching the behavior analysts expect from
// spreadsheet and dataframe quantiles. Returns 0 for an empty slice.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Median returns the 0.5 quantile of values.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}
