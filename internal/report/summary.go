// Package report assembles the summary statistics consumed by the rendering
// and export collaborators, and the templated question responder built on
// top of them. Everything here is pure aggregation over already-computed
// entities; nothing is fetched independently.
package report

import (
	"math"
	"time"

	"fairsquare/internal/analytics"
	"fairsquare/internal/dataset"
)

// DeltaWindowDays is the comparison window for period-over-period deltas.
const DeltaWindowDays = 30

// CategoryShare is the top category of one dimension with its revenue share.
type CategoryShare struct {
	Name  string  `json:"name"`
	Sales float64 `json:"sales"`
	Share float64 `json:"share"`
}

// PeriodDelta compares the trailing window against the window before it.
// Delta is current/previous - 1, defined as 0 when previous is 0.
type PeriodDelta struct {
	WindowDays int     `json:"window_days"`
	Current    float64 `json:"current"`
	Previous   float64 `json:"previous"`
	Delta      float64 `json:"delta"`
}

// SummaryStats is the structured summary handed to rendering and export.
type SummaryStats struct {
	TotalRevenue  float64                  `json:"total_revenue"`
	AvgDailySales float64                  `json:"avg_daily_sales"`
	Rows          int                      `json:"rows"`
	Start         time.Time                `json:"start"`
	End           time.Time                `json:"end"`
	TopCategories map[string]CategoryShare `json:"top_categories"`
	RevenueDelta  PeriodDelta              `json:"revenue_delta"`
}

// BuildSummary computes summary statistics from the canonical table and its
// daily series.
func BuildSummary(table *dataset.CanonicalTable, series analytics.DailySeries) *SummaryStats {
	start, end := table.DateRange()

	summary := &SummaryStats{
		TotalRevenue:  table.TotalSales(),
		AvgDailySales: series.Mean(),
		Rows:          table.Len(),
		Start:         start,
		End:           end,
		TopCategories: make(map[string]CategoryShare, len(analytics.Dimensions)),
		RevenueDelta:  revenueDelta(series, end),
	}

	for _, dim := range analytics.Dimensions {
		if top, ok := topCategory(table, dim); ok {
			summary.TopCategories[string(dim)] = top
		}
	}

	return summary
}

// topCategory returns the dimension value with the highest summed sales.
func topCategory(table *dataset.CanonicalTable, dim analytics.Dimension) (CategoryShare, bool) {
	totals := analytics.AggregateBy(table, dim)
	if len(totals) == 0 {
		return CategoryShare{}, false
	}

	var top CategoryShare
	first := true
	for name, sales := range totals {
		if first || sales > top.Sales || (sales == top.Sales && name < top.Name) {
			top = CategoryShare{Name: name, Sales: sales}
			first = false
		}
	}

	share := analytics.Share(top.Sales, table.TotalSales())
	if !math.IsNaN(share) {
		top.Share = share
	}
	return top, true
}

// revenueDelta compares the trailing window ending at end against the
// window immediately before it.
func revenueDelta(series analytics.DailySeries, end time.Time) PeriodDelta {
	delta := PeriodDelta{WindowDays: DeltaWindowDays}
	if len(series) == 0 {
		return delta
	}

	currentStart := end.AddDate(0, 0, -(DeltaWindowDays - 1))
	previousStart := currentStart.AddDate(0, 0, -DeltaWindowDays)

	delta.Current = series.Between(currentStart, end).Total()
	delta.Previous = series.Between(previousStart, currentStart.AddDate(0, 0, -1)).Total()
	if delta.Previous != 0 {
		delta.Delta = delta.Current/delta.Previous - 1
	}
	return delta
}
