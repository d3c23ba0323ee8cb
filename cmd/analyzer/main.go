// Command analyzer runs the full pipeline once over a transaction file and
// exports the structured results: normalized table, daily and weekly series,
// 90-day forecast, and summary statistics.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"fairsquare/internal/analytics"
	"fairsquare/internal/config"
	"fairsquare/internal/dataset"
	"fairsquare/internal/errors"
	"fairsquare/internal/exporter"
	"fairsquare/internal/forecast"
	"fairsquare/internal/infrastructure"
	"fairsquare/internal/report"
)

func main() {
	inFile := flag.String("in", "", "input transaction file (.csv or .xlsx); empty runs on demo data")
	outDir := flag.String("out", "reports", "output directory for exported results")
	horizon := flag.Int("horizon", 0, "forecast horizon in days (defaults to configuration)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	if *horizon <= 0 {
		*horizon = cfg.Forecast.HorizonDays
	}

	ctx := context.Background()
	if err := run(ctx, logger, cfg, *inFile, *outDir, *horizon); err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, inFile, outDir string, horizon int) error {
	demo := dataset.DemoConfig{Days: cfg.Data.DemoDays, Seed: cfg.Data.DemoSeed}

	var result dataset.LoadResult
	if inFile == "" {
		result = dataset.LoadDemo(ctx, demo, logger)
	} else {
		file, err := os.Open(inFile)
		if err != nil {
			return errors.NewStorageError("failed to open input file", err)
		}
		defer file.Close()

		raw, err := dataset.ReadTable(file, inFile)
		if err != nil {
			return err
		}
		result = dataset.Load(ctx, raw, demo, logger)
	}
	if result.Notice != "" {
		logger.Info("dataset notice", "notice", result.Notice)
	}

	table := result.Table
	daily := analytics.AggregateDaily(table)
	weekly := analytics.AggregateWeekly(daily)
	summary := report.BuildSummary(table, daily)

	writer := exporter.NewWriter(outDir, logger)
	if err := writer.WriteTable("transactions.csv", table); err != nil {
		return err
	}
	if err := writer.WriteSeries("daily_sales.csv", daily); err != nil {
		return err
	}
	if err := writer.WriteSeries("weekly_sales.csv", weekly); err != nil {
		return err
	}
	if err := writer.WriteSummaryJSON("summary.json", summary); err != nil {
		return err
	}

	engine := forecast.New(logger, forecast.Config{FourierOrder: cfg.Forecast.FourierOrder})
	fitCtx, cancel := context.WithTimeout(ctx, cfg.Forecast.FitTimeout)
	defer cancel()

	projection, err := engine.Forecast(fitCtx, daily, horizon)
	switch {
	case errors.IsType(err, errors.ErrTypeInsufficientHistory):
		// Too little history: the raw series stands on its own, with no
		// silent extrapolation.
		logger.Warn("skipping forecast", "reason", err.Error())
	case err != nil:
		return err
	default:
		if err := writer.WriteForecast("forecast.csv", projection); err != nil {
			return err
		}
	}

	logger.Info("analysis complete",
		"rows", table.Len(),
		"total_revenue", summary.TotalRevenue,
		"out_dir", outDir)
	return nil
}
