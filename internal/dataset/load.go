package dataset

import (
	"context"
	"fmt"
	"log/slog"
)

// LoadResult is the outcome of loading a dataset: the canonical table, plus
// whether the synthetic fallback was used and why.
type LoadResult struct {
	Table     *CanonicalTable
	Synthetic bool
	Notice    string
}

// Load normalizes a raw table, substituting the synthetic demo dataset when
// normalization fails. The failure reason is carried in the result notice as
// an informational message, never surfaced as a hard error; this fallback is
// reserved for dataset loading and must not be imitated elsewhere.
func Load(ctx context.Context, raw Table, demo DemoConfig, logger *slog.Logger) LoadResult {
	if logger == nil {
		logger = slog.Default()
	}

	table, err := Normalize(raw)
	if err != nil {
		logger.WarnContext(ctx, "normalization failed, substituting demo data",
			slog.String("reason", err.Error()),
			slog.Int("demo_days", demo.Days),
			slog.Int64("demo_seed", demo.Seed))
		return LoadResult{
			Table:     DemoTable(demo),
			Synthetic: true,
			Notice:    fmt.Sprintf("upload could not be used (%s); showing demo data", err.Error()),
		}
	}

	start, end := table.DateRange()
	logger.InfoContext(ctx, "dataset loaded",
		slog.Int("rows", table.Len()),
		slog.Time("start", start),
		slog.Time("end", end))

	return LoadResult{Table: table}
}

// LoadDemo returns the synthetic demo dataset as a load result, used when no
// upload is provided at all.
func LoadDemo(ctx context.Context, demo DemoConfig, logger *slog.Logger) LoadResult {
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "no upload provided, using demo data",
		slog.Int("demo_days", demo.Days),
		slog.Int64("demo_seed", demo.Seed))
	return LoadResult{
		Table:     DemoTable(demo),
		Synthetic: true,
		Notice:    "using demo data",
	}
}
