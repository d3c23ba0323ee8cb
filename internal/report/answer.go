package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"fairsquare/internal/analytics"
	"fairsquare/internal/dataset"
)

// Insight is one structured answer from the templated responder.
type Insight struct {
	Question string `json:"question"`
	Topic    string `json:"topic"`
	Insight  string `json:"insight"`
	Action   string `json:"action,omitempty"`
}

// Answerer is the templated business Q&A responder. It keys on question
// topics and grounds every answer in the session's computed aggregates.
type Answerer struct {
	table   *dataset.CanonicalTable
	series  analytics.DailySeries
	summary *SummaryStats
}

// NewAnswerer builds a responder over the dataset and its summary.
func NewAnswerer(table *dataset.CanonicalTable, series analytics.DailySeries, summary *SummaryStats) *Answerer {
	return &Answerer{table: table, series: series, summary: summary}
}

// Answer matches the question against the known topics and returns a
// grounded insight. Unknown questions get a suggestion of what to ask.
func (a *Answerer) Answer(question string) Insight {
	q := strings.ToLower(question)

	switch {
	case strings.Contains(q, "down") || strings.Contains(q, "drop"):
		return a.salesDownInsight(question)
	case strings.Contains(q, "channel") || strings.Contains(q, "roi"):
		return a.channelInsight(question)
	case strings.Contains(q, "expand"):
		return a.expansionInsight(question)
	default:
		return Insight{
			Question: question,
			Topic:    "unknown",
			Insight:  a.topProductLine() + "Try: Why are sales down? | Which channel has best ROI? | Should I expand?",
		}
	}
}

// salesDownInsight compares recent returning-customer visits against the
// dataset-wide pace.
func (a *Answerer) salesDownInsight(question string) Insight {
	_, end := a.table.DateRange()
	cutoff := end.AddDate(0, 0, -DeltaWindowDays)

	recent := a.countReturningSince(cutoff)
	total := analytics.CountBy(a.table, analytics.DimensionCustomerType)["Returning"]

	insight := Insight{Question: question, Topic: "sales_down"}
	if total == 0 {
		insight.Insight = "No returning-customer data to compare."
		return insight
	}

	expected := a.expectedReturningPerWindow(total, end)
	insight.Insight = fmt.Sprintf("%s%d returning visits in the last %d days (typical pace: %d).",
		a.topProductLine(), recent, DeltaWindowDays, expected)
	insight.Action = "Re-engage lapsed regulars with a 10% off offer."
	return insight
}

// channelInsight names the channel with the highest summed sales.
func (a *Answerer) channelInsight(question string) Insight {
	top, ok := topCategory(a.table, analytics.DimensionChannel)
	insight := Insight{Question: question, Topic: "channel_roi"}
	if !ok {
		insight.Insight = "No channel data available."
		return insight
	}
	insight.Insight = fmt.Sprintf("%s%s drives the most revenue (%.0f%% of sales).",
		a.topProductLine(), top.Name, top.Share*100)
	insight.Action = fmt.Sprintf("Shift budget toward %s.", top.Name)
	return insight
}

// expansionInsight ranks cities by revenue.
func (a *Answerer) expansionInsight(question string) Insight {
	totals := analytics.AggregateBy(a.table, analytics.DimensionCity)
	insight := Insight{Question: question, Topic: "expansion"}
	if len(totals) < 2 {
		insight.Insight = "Not enough location data to compare."
		return insight
	}

	cities := make([]string, 0, len(totals))
	for city := range totals {
		cities = append(cities, city)
	}
	sort.Slice(cities, func(i, j int) bool {
		if totals[cities[i]] != totals[cities[j]] {
			return totals[cities[i]] > totals[cities[j]]
		}
		return cities[i] < cities[j]
	})

	leader, runnerUp := cities[0], cities[1]
	ratio := 0.0
	if totals[runnerUp] > 0 {
		ratio = (totals[leader]/totals[runnerUp] - 1) * 100
	}
	insight.Insight = fmt.Sprintf("%s%s outsells %s by %.0f%%.", a.topProductLine(), leader, runnerUp, ratio)
	insight.Action = fmt.Sprintf("Prioritize %s for expansion.", leader)
	return insight
}

// topProductLine is the cross-page lead-in naming the top product, when one
// exists.
func (a *Answerer) topProductLine() string {
	top, ok := a.summary.TopCategories[string(analytics.DimensionProduct)]
	if !ok {
		return ""
	}
	return fmt.Sprintf("Top product: %s (%.0f%% of revenue). ", top.Name, top.Share*100)
}

func (a *Answerer) countReturningSince(cutoff time.Time) int {
	count := 0
	for _, r := range a.table.Records {
		if r.CustomerType == "Returning" && r.Date.After(cutoff) {
			count++
		}
	}
	return count
}

// expectedReturningPerWindow scales the total returning count to one delta
// window, given the dataset span.
func (a *Answerer) expectedReturningPerWindow(total int, end time.Time) int {
	start, _ := a.table.DateRange()
	spanDays := int(end.Sub(start).Hours()/24) + 1
	if spanDays <= 0 {
		return total
	}
	expected := total * DeltaWindowDays / spanDays
	if expected < 1 {
		expected = 1
	}
	return expected
}
