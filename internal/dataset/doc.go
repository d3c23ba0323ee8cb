// Package dataset implements the data-normalization front of the analytics
// pipeline. It reads uploaded tabular files (CSV or Excel), validates and
// coerces arbitrary source columns into the canonical six-column transaction
// schema, and generates the seeded synthetic demo dataset used as a fallback
// when an upload cannot be normalized.
//
// # Canonical schema
//
// Every retained record has a valid date and a numeric sales amount >= 0.
// The canonical column set is exactly:
//
//	date, sales, product, channel, customer_type, city
//
// Two source shapes are accepted: tables already carrying canonical column
// names, and retail-transaction exports whose columns are remapped as
// total_amount→sales, product_category→product, payment_method→channel,
// location→city.
//
// # Fallback
//
// Normalization failures are recovered locally by Load, which substitutes a
// deterministic synthetic dataset and reports the failure reason as an
// informational notice. No other component may fall back silently.
package dataset
