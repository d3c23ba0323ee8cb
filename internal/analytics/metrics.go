package analytics

import (
	"math"
	"time"

	"fairsquare/internal/dataset"
)

// Scalar metrics fail gracefully on empty input: they return NaN rather than
// panicking, and callers display "N/A" in that case.

// Total returns the sum of the series.
func (s DailySeries) Total() float64 {
	var total float64
	for _, p := range s {
		total += p.TotalSales
	}
	return total
}

// Mean returns the average daily sales, or NaN for an empty series.
func (s DailySeries) Mean() float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return s.Total() / float64(len(s))
}

// Between returns the sub-series with dates in [start, end], inclusive.
func (s DailySeries) Between(start, end time.Time) DailySeries {
	out := make(DailySeries, 0, len(s))
	for _, p := range s {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MeanSales returns the average per-record sales amount, or NaN when the
// table is empty.
func MeanSales(table *dataset.CanonicalTable) float64 {
	if table.Len() == 0 {
		return math.NaN()
	}
	return table.TotalSales() / float64(table.Len())
}

// Share returns part as a fraction of whole, or NaN when whole is zero.
func Share(part, whole float64) float64 {
	if whole == 0 {
		return math.NaN()
	}
	return part / whole
}
