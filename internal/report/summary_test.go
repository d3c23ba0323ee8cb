package report

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairsquare/internal/analytics"
	"fairsquare/internal/dataset"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func buildTable(records ...dataset.TransactionRecord) *dataset.CanonicalTable {
	return &dataset.CanonicalTable{Records: records}
}

func TestBuildSummary(t *testing.T) {
	table := buildTable(
		dataset.TransactionRecord{Date: day(1), Sales: 100, Product: "Coffee", Channel: "In-Store", CustomerType: "Returning", City: "Downtown"},
		dataset.TransactionRecord{Date: day(2), Sales: 300, Product: "Coffee", Channel: "Online", CustomerType: "New", City: "Suburb"},
		dataset.TransactionRecord{Date: day(3), Sales: 50, Product: "Pastry", Channel: "In-Store", CustomerType: "Returning", City: "Downtown"},
	)
	series := analytics.AggregateDaily(table)

	summary := BuildSummary(table, series)

	assert.Equal(t, 450.0, summary.TotalRevenue)
	assert.Equal(t, 150.0, summary.AvgDailySales)
	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, day(1), summary.Start)
	assert.Equal(t, day(3), summary.End)

	product := summary.TopCategories["product"]
	assert.Equal(t, "Coffee", product.Name)
	assert.Equal(t, 400.0, product.Sales)
	assert.InDelta(t, 400.0/450.0, product.Share, 1e-9)

	city := summary.TopCategories["city"]
	assert.Equal(t, "Suburb", city.Name)

	require.Contains(t, summary.TopCategories, "channel")
	require.Contains(t, summary.TopCategories, "customer_type")
}

func TestBuildSummary_Empty(t *testing.T) {
	table := buildTable()
	summary := BuildSummary(table, analytics.AggregateDaily(table))

	assert.Equal(t, 0.0, summary.TotalRevenue)
	assert.True(t, math.IsNaN(summary.AvgDailySales))
	assert.Empty(t, summary.TopCategories)
	assert.Equal(t, 0.0, summary.RevenueDelta.Delta)
}

func TestRevenueDelta(t *testing.T) {
	// 60 days of sales: the older window totals 10/day, the recent one
	// 20/day, so the delta is +100%.
	var records []dataset.TransactionRecord
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		sales := 10.0
		if i >= 30 {
			sales = 20.0
		}
		records = append(records, dataset.TransactionRecord{
			Date: start.AddDate(0, 0, i), Sales: sales,
			Product: "Coffee", Channel: "In-Store", CustomerType: "New", City: "Downtown",
		})
	}
	table := buildTable(records...)

	summary := BuildSummary(table, analytics.AggregateDaily(table))

	assert.Equal(t, DeltaWindowDays, summary.RevenueDelta.WindowDays)
	assert.Equal(t, 600.0, summary.RevenueDelta.Current)
	assert.Equal(t, 300.0, summary.RevenueDelta.Previous)
	assert.InDelta(t, 1.0, summary.RevenueDelta.Delta, 1e-9)
}

func TestRevenueDelta_ZeroPrevious(t *testing.T) {
	// Only recent data: the previous window is empty and the delta is
	// defined as zero, not a division error.
	table := buildTable(
		dataset.TransactionRecord{Date: day(1), Sales: 100, Product: "Coffee", Channel: "In-Store", CustomerType: "New", City: "Downtown"},
		dataset.TransactionRecord{Date: day(5), Sales: 200, Product: "Coffee", Channel: "In-Store", CustomerType: "New", City: "Downtown"},
	)

	summary := BuildSummary(table, analytics.AggregateDaily(table))

	assert.Equal(t, 300.0, summary.RevenueDelta.Current)
	assert.Equal(t, 0.0, summary.RevenueDelta.Previous)
	assert.Equal(t, 0.0, summary.RevenueDelta.Delta)
}
