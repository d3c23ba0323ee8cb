package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"fairsquare/internal/errors"
)

// Unknown is the default value for missing categorical fields.
const Unknown = "Unknown"

// CanonicalColumns is the fixed column set of the canonical schema, in order.
var CanonicalColumns = []string{"date", "sales", "product", "channel", "customer_type", "city"}

// TransactionRecord is one row of business activity in the canonical schema.
type TransactionRecord struct {
	Date         time.Time `json:"date"`
	Sales        float64   `json:"sales"`
	Product      string    `json:"product"`
	Channel      string    `json:"channel"`
	CustomerType string    `json:"customer_type"`
	City         string    `json:"city"`
}

// CanonicalTable is the normalized dataset every analysis operates on.
// It is replaced wholesale on each upload; downstream entities are pure
// derivations recomputed on demand.
type CanonicalTable struct {
	Records []TransactionRecord `json:"records"`
}

// Len returns the number of records.
func (t *CanonicalTable) Len() int {
	return len(t.Records)
}

// Columns returns the canonical column set.
func (t *CanonicalTable) Columns() []string {
	cols := make([]string, len(CanonicalColumns))
	copy(cols, CanonicalColumns)
	return cols
}

// DateRange returns the earliest and latest record dates.
// Both are zero when the table is empty.
func (t *CanonicalTable) DateRange() (time.Time, time.Time) {
	if len(t.Records) == 0 {
		return time.Time{}, time.Time{}
	}
	min, max := t.Records[0].Date, t.Records[0].Date
	for _, r := range t.Records[1:] {
		if r.Date.Before(min) {
			min = r.Date
		}
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return min, max
}

// TotalSales returns the sum of sales across all records.
func (t *CanonicalTable) TotalSales() float64 {
	var total float64
	for _, r := range t.Records {
		total += r.Sales
	}
	return total
}

// ToTable converts the canonical table back into the raw tabular shape,
// with dates formatted as 2006-01-02. Normalizing the result yields an
// equal canonical table.
func (t *CanonicalTable) ToTable() Table {
	rows := make([][]string, 0, len(t.Records))
	for _, r := range t.Records {
		rows = append(rows, []string{
			r.Date.Format("2006-01-02"),
			strconv.FormatFloat(r.Sales, 'f', -1, 64),
			r.Product,
			r.Channel,
			r.CustomerType,
			r.City,
		})
	}
	cols := make([]string, len(CanonicalColumns))
	copy(cols, CanonicalColumns)
	return Table{Columns: cols, Rows: rows}
}

// columnIndices holds the resolved source column positions.
// A value of -1 means the column is absent.
type columnIndices struct {
	date         int
	sales        int
	product      int
	channel      int
	customerType int
	city         int
}

// findColumnIndices maps source column names, canonical or retail-shaped,
// onto canonical positions. Header names are matched case-insensitively
// after BOM and whitespace cleanup.
func findColumnIndices(header []string) columnIndices {
	indices := columnIndices{date: -1, sales: -1, product: -1, channel: -1, customerType: -1, city: -1}

	for i, col := range header {
		cleanCol := strings.TrimSpace(col)
		cleanCol = strings.TrimPrefix(cleanCol, "\uFEFF")
		cleanCol = strings.TrimLeft(cleanCol, "\u200B\u200C\u200D\u2060\uFEFF")
		lowerCol := strings.ToLower(strings.TrimSpace(cleanCol))

		switch lowerCol {
		case "date":
			indices.date = i
		case "sales", "total_amount":
			// Prefer an explicit sales column over the retail alias.
			if indices.sales == -1 || lowerCol == "sales" {
				indices.sales = i
			}
		case "product", "product_category":
			if indices.product == -1 || lowerCol == "product" {
				indices.product = i
			}
		case "channel", "payment_method":
			if indices.channel == -1 || lowerCol == "channel" {
				indices.channel = i
			}
		case "customer_type":
			indices.customerType = i
		case "city", "location":
			if indices.city == -1 || lowerCol == "city" {
				indices.city = i
			}
		}
	}

	return indices
}

// dateLayouts are the accepted date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

// parseDate parses a calendar date, normalizing away any time-of-day part.
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseSales coerces a sales amount, tolerating thousands separators and a
// leading currency sign.
func parseSales(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "$")
	value = strings.ReplaceAll(value, ",", "")
	if value == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}
	return parsed, true
}

// cell returns the trimmed cell at index idx, or "" when absent.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// categorical returns the cell value or the Unknown default when the column
// is absent or the cell is empty.
func categorical(row []string, idx int) string {
	if value := cell(row, idx); value != "" {
		return value
	}
	return Unknown
}

// Normalize validates and coerces a raw table into the canonical schema.
//
// It fails with a SchemaError when neither required column pair
// (date+sales or date+total_amount) is present, and with an
// EmptyDatasetError when no row survives coercion. Individual rows with an
// unparseable date, a non-numeric amount, or a negative amount are dropped
// rather than failing the whole table.
func Normalize(raw Table) (*CanonicalTable, error) {
	indices := findColumnIndices(raw.Columns)

	var missing []string
	if indices.date == -1 {
		missing = append(missing, "date")
	}
	if indices.sales == -1 {
		missing = append(missing, "sales|total_amount")
	}
	if len(missing) > 0 {
		return nil, errors.NewSchemaError(
			fmt.Sprintf("required columns missing: %s", strings.Join(missing, ", ")), nil).
			WithContext("missing", missing).
			WithContext("header", raw.Columns)
	}

	records := make([]TransactionRecord, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		date, ok := parseDate(cell(row, indices.date))
		if !ok {
			continue
		}
		sales, ok := parseSales(cell(row, indices.sales))
		if !ok || sales < 0 {
			continue
		}

		records = append(records, TransactionRecord{
			Date:         date,
			Sales:        sales,
			Product:      categorical(row, indices.product),
			Channel:      categorical(row, indices.channel),
			CustomerType: categorical(row, indices.customerType),
			City:         categorical(row, indices.city),
		})
	}

	if len(records) == 0 {
		return nil, errors.NewEmptyDatasetError("no valid rows remain after cleaning")
	}

	return &CanonicalTable{Records: records}, nil
}
