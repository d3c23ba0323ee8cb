package forecast

import (
	"context"
	"log/slog"
	"math"
	"time"

	"fairsquare/internal/analytics"
	"fairsquare/internal/errors"
)

const (
	// MinObservations is the minimum series length the engine will fit.
	MinObservations = 30

	// yearDays is the length of the yearly seasonal cycle.
	yearDays = 365.25

	// zScore95 is the standard normal quantile for a ~95% interval.
	zScore95 = 1.96
)

// Point is one forecast row. Lower <= Point <= Upper always holds.
type Point struct {
	Date  time.Time `json:"date"`
	Point float64   `json:"point_estimate"`
	Lower float64   `json:"lower_bound"`
	Upper float64   `json:"upper_bound"`
}

// Result covers the full history (in-sample fitted values) followed by the
// requested horizon.
type Result struct {
	Points      []Point `json:"points"`
	HorizonDays int     `json:"horizon_days"`
	HistoryDays int     `json:"history_days"`
}

// Config holds engine tuning parameters.
type Config struct {
	FourierOrder int // number of yearly Fourier term pairs
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{FourierOrder: 3}
}

// Engine fits the additive seasonal model. It holds no per-call state and is
// safe for concurrent use.
type Engine struct {
	logger       *slog.Logger
	fourierOrder int
}

// New creates a forecast engine with the given configuration.
func New(logger *slog.Logger, cfg Config) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FourierOrder < 1 {
		cfg.FourierOrder = DefaultConfig().FourierOrder
	}
	return &Engine{
		logger:       logger,
		fourierOrder: cfg.FourierOrder,
	}
}

// Forecast fits the model on the full series and produces point estimates
// with a ~95% predictive interval for every historical date plus horizonDays
// future dates.
func (e *Engine) Forecast(ctx context.Context, series analytics.DailySeries, horizonDays int) (*Result, error) {
	if len(series) < MinObservations {
		return nil, errors.NewInsufficientHistoryError(len(series), MinObservations)
	}
	if horizonDays < 0 {
		return nil, errors.NewInvalidInputError("forecast horizon must not be negative")
	}

	start := time.Now()
	e.logger.InfoContext(ctx, "fitting forecast model",
		slog.Int("observations", len(series)),
		slog.Int("horizon_days", horizonDays),
		slog.Int("fourier_order", e.fourierOrder))

	origin := series[0].Date
	span := series[len(series)-1].Date.Sub(origin).Hours() / 24
	if span <= 0 {
		return nil, errors.NewModelFitError("series has no date span", nil)
	}

	// Design matrix over the observed dates.
	features := make([][]float64, len(series))
	observed := make([]float64, len(series))
	for i, p := range series {
		features[i] = e.featuresFor(p.Date, origin, span)
		observed[i] = p.TotalSales
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewModelFitError("forecast cancelled", err)
	}

	coeffs, err := solveLeastSquares(features, observed)
	if err != nil {
		return nil, errors.NewModelFitError("least squares fit failed", err)
	}

	// In-sample fit and residual spread.
	fitted := make([]float64, len(series))
	var sse float64
	for i, row := range features {
		fitted[i] = dot(coeffs, row)
		resid := observed[i] - fitted[i]
		sse += resid * resid
	}
	dof := len(series) - len(coeffs)
	if dof < 1 {
		dof = 1
	}
	sigma := math.Sqrt(sse / float64(dof))
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, errors.NewModelFitError("model produced a non-finite residual spread", nil)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewModelFitError("forecast cancelled", err)
	}

	result := &Result{
		Points:      make([]Point, 0, len(series)+horizonDays),
		HorizonDays: horizonDays,
		HistoryDays: len(series),
	}

	width := zScore95 * sigma
	for i, p := range series {
		result.Points = append(result.Points, Point{
			Date:  p.Date,
			Point: fitted[i],
			Lower: fitted[i] - width,
			Upper: fitted[i] + width,
		})
	}

	// Future points: the interval widens with distance from the history.
	last := series[len(series)-1].Date
	for h := 1; h <= horizonDays; h++ {
		date := last.AddDate(0, 0, h)
		estimate := dot(coeffs, e.featuresFor(date, origin, span))
		futureWidth := width * math.Sqrt(1+float64(h)/float64(len(series)))
		result.Points = append(result.Points, Point{
			Date:  date,
			Point: estimate,
			Lower: estimate - futureWidth,
			Upper: estimate + futureWidth,
		})
	}

	e.logger.InfoContext(ctx, "forecast complete",
		slog.Int("points", len(result.Points)),
		slog.Float64("residual_sigma", sigma),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

// featuresFor builds the regression row for a date: intercept, normalized
// trend, day-of-week effects, and yearly Fourier terms.
func (e *Engine) featuresFor(date time.Time, origin time.Time, span float64) []float64 {
	row := make([]float64, 0, 2+6+2*e.fourierOrder)

	// Intercept and linear trend, scaled by the observed span so the normal
	// equations stay well conditioned for any date range.
	t := date.Sub(origin).Hours() / 24
	row = append(row, 1, t/span)

	// Weekly seasonality: one indicator per weekday, Sunday as baseline.
	weekday := int(date.Weekday())
	for d := 1; d <= 6; d++ {
		if weekday == d {
			row = append(row, 1)
		} else {
			row = append(row, 0)
		}
	}

	// Yearly seasonality as Fourier terms over the day of year.
	yearPos := 2 * math.Pi * t / yearDays
	for k := 1; k <= e.fourierOrder; k++ {
		row = append(row, math.Sin(float64(k)*yearPos), math.Cos(float64(k)*yearPos))
	}

	return row
}

// dot returns the inner product of two equal-length vectors.
func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
