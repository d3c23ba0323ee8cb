// Package analytics collapses the canonical transaction table into daily and
// weekly time series and per-dimension breakdowns. All functions are pure
// sum-reductions over their inputs; empty groups are simply absent from the
// result rather than zero-filled.
package analytics

import (
	"sort"
	"time"

	"fairsquare/internal/dataset"
)

// DailyPoint is one row of a daily (or weekly) sales series.
type DailyPoint struct {
	Date       time.Time `json:"date"`
	TotalSales float64   `json:"total_sales"`
}

// DailySeries is a sales series with strictly increasing, duplicate-free
// dates. It is derived deterministically from the canonical table and never
// mutated in place.
type DailySeries []DailyPoint

// Dimension names a categorical column of the canonical schema.
type Dimension string

const (
	DimensionProduct      Dimension = "product"
	DimensionChannel      Dimension = "channel"
	DimensionCustomerType Dimension = "customer_type"
	DimensionCity         Dimension = "city"
)

// Dimensions lists the breakdown dimensions in canonical column order.
var Dimensions = []Dimension{DimensionProduct, DimensionChannel, DimensionCustomerType, DimensionCity}

// Valid reports whether d names a known categorical column.
func (d Dimension) Valid() bool {
	switch d {
	case DimensionProduct, DimensionChannel, DimensionCustomerType, DimensionCity:
		return true
	}
	return false
}

// value extracts the record field for the dimension.
func (d Dimension) value(r dataset.TransactionRecord) string {
	switch d {
	case DimensionProduct:
		return r.Product
	case DimensionChannel:
		return r.Channel
	case DimensionCustomerType:
		return r.CustomerType
	case DimensionCity:
		return r.City
	}
	return ""
}

// AggregateDaily collapses the table into one point per distinct date,
// summing sales. Output dates are strictly increasing with no duplicates,
// and the series total equals the table total.
func AggregateDaily(table *dataset.CanonicalTable) DailySeries {
	totals := make(map[time.Time]float64)
	for _, r := range table.Records {
		totals[r.Date] += r.Sales
	}

	series := make(DailySeries, 0, len(totals))
	for date, total := range totals {
		series = append(series, DailyPoint{Date: date, TotalSales: total})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	return series
}

// AggregateBy sums sales per distinct value of the given dimension.
func AggregateBy(table *dataset.CanonicalTable, dim Dimension) map[string]float64 {
	totals := make(map[string]float64)
	for _, r := range table.Records {
		totals[dim.value(r)] += r.Sales
	}
	return totals
}

// CountBy counts records per distinct value of the given dimension.
func CountBy(table *dataset.CanonicalTable, dim Dimension) map[string]int {
	counts := make(map[string]int)
	for _, r := range table.Records {
		counts[dim.value(r)]++
	}
	return counts
}

// weekEnding returns the calendar week bucket for a date: the next Sunday,
// or the date itself when it already is one.
func weekEnding(date time.Time) time.Time {
	offset := (int(time.Sunday) - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, offset)
}

// AggregateWeekly resamples a daily series into calendar weeks ending on
// Sunday, summing sales within each week. A partial trailing week is kept
// as-is; callers computing trends must treat it as potentially
// lower-than-average rather than a drop in sales.
func AggregateWeekly(series DailySeries) DailySeries {
	totals := make(map[time.Time]float64)
	for _, p := range series {
		totals[weekEnding(p.Date)] += p.TotalSales
	}

	weekly := make(DailySeries, 0, len(totals))
	for date, total := range totals {
		weekly = append(weekly, DailyPoint{Date: date, TotalSales: total})
	}
	sort.Slice(weekly, func(i, j int) bool {
		return weekly[i].Date.Before(weekly[j].Date)
	})

	return weekly
}
