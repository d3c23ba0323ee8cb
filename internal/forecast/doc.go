// Package forecast implements the sales forecast engine: an additive
// seasonal decomposition model producing point estimates with a predictive
// interval over the full history plus a future horizon.
//
// # Model
//
// The model decomposes daily sales into a linear trend, a weekly seasonal
// component (day-of-week effects), and a yearly seasonal component (Fourier
// terms over the day of year). It is fit once per call on the full history
// by deterministic least squares; repeated calls on the same series produce
// identical output.
//
// # Contract
//
// A series shorter than MinObservations fails with an
// InsufficientHistoryError; callers fall back to displaying the raw series
// without projection. Every output row satisfies lower <= point <= upper.
// The fit is a blocking computation and honors caller cancellation through
// its context.
package forecast
