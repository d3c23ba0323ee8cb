package app

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"fairsquare/internal/analytics"
	"fairsquare/internal/dataset"
	"fairsquare/internal/errors"
	"fairsquare/internal/finance"
	"fairsquare/internal/query"
	"fairsquare/internal/report"
	"fairsquare/internal/session"
)

// renderError maps any pipeline error onto its HTTP shape and writes it.
func (a *Application) renderError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := errors.ToAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		a.logger.ErrorContext(r.Context(), "request failed", slog.String("error", err.Error()))
	} else {
		a.logger.WarnContext(r.Context(), "request rejected", slog.String("error", err.Error()))
	}
	render.Render(w, r, errors.NewErrorResponse(apiErr))
}

// sessionFrom resolves the session referenced by the URL, or renders a 404.
func (a *Application) sessionFrom(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	s, ok := a.store.Get(id)
	if !ok {
		a.renderError(w, r, errors.NewNotFoundError("session not found: "+id))
		return nil, false
	}
	return s, true
}

// datasetResponse describes a session's dataset to the caller.
type datasetResponse struct {
	SessionID string   `json:"session_id"`
	Rows      int      `json:"rows"`
	Columns   []string `json:"columns"`
	Start     string   `json:"start,omitempty"`
	End       string   `json:"end,omitempty"`
	Synthetic bool     `json:"synthetic"`
	Notice    string   `json:"notice,omitempty"`
}

func describe(s *session.Session) datasetResponse {
	resp := datasetResponse{
		SessionID: s.ID,
		Rows:      s.Table.Len(),
		Columns:   s.Table.Columns(),
		Synthetic: s.Synthetic,
		Notice:    s.Notice,
	}
	if s.Table.Len() > 0 {
		start, end := s.Table.DateRange()
		resp.Start = start.Format("2006-01-02")
		resp.End = end.Format("2006-01-02")
	}
	return resp
}

// loadUpload reads the optional uploaded file from the request and loads it
// into a canonical table, falling back to demo data per the normalizer
// contract.
func (a *Application) loadUpload(r *http.Request) (dataset.LoadResult, error) {
	demo := dataset.DemoConfig{
		Days: a.cfg.Data.DemoDays,
		Seed: a.cfg.Data.DemoSeed,
	}

	if err := r.ParseMultipartForm(a.cfg.Server.MaxUploadBytes); err != nil {
		// No multipart body at all means a demo-data session.
		return dataset.LoadDemo(r.Context(), demo, a.logger), nil
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return dataset.LoadDemo(r.Context(), demo, a.logger), nil
	}
	defer file.Close()

	raw, err := dataset.ReadTable(file, header.Filename)
	if err != nil {
		// Unreadable files fall back to demo data like any other
		// normalization failure; the reason travels in the notice.
		a.logger.WarnContext(r.Context(), "upload unreadable, substituting demo data",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		result := dataset.LoadDemo(r.Context(), demo, a.logger)
		result.Notice = "upload could not be used (" + err.Error() + "); showing demo data"
		return result, nil
	}

	return dataset.Load(r.Context(), raw, demo, a.logger), nil
}

func (a *Application) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	result, err := a.loadUpload(r)
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	s := a.store.Create(result)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, describe(s))
}

func (a *Application) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFrom(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"dataset": describe(s),
		"records": s.Table.Records,
	})
}

func (a *Application) handleReplaceDataset(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFrom(w, r)
	if !ok {
		return
	}

	result, err := a.loadUpload(r)
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	s, _ = a.store.Replace(s.ID, result)
	render.JSON(w, r, describe(s))
}

func (a *Application) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !a.store.Delete(id) {
		a.renderError(w, r, errors.NewNotFoundError("session not found: "+id))
		return
	}
	render.NoContent(w, r)
}

func (a *Application) handleDailySeries(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFrom(w, r)
	if !ok {
		return
	}

	series := s.Daily()
	granularity := r.URL.Query().Get("granularity")
	switch granularity {
	case "", "daily":
	case "weekly":
		series = analytics.AggregateWeekly(series)
	default:
		a.renderError(w, r, errors.NewValidationError("granularity must be daily or weekly", nil))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"granularity": granularityOrDefault(granularity),
		"series":      series,
	})
}

func granularityOrDefault(g string) string {
	if g == "" {
		return "daily"
	}
	return g
}

func (a *Application) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFrom(w, r)
	if !ok {
		return
	}

	dim := analytics.Dimension(r.URL.Query().Get("dimension"))
	if !dim.Valid() {
		a.renderError(w, r, errors.NewValidationError(
			"dimension must be one of product, channel, customer_type, city", nil))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"dimension": dim,
		"totals":    analytics.AggregateBy(s.Table, dim),
	})
}

func (a *Application) handleForecast(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFrom(w, r)
	if !ok {
		return
	}

	horizon := a.cfg.Forecast.HorizonDays
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			a.renderError(w, r, errors.NewValidationError("horizon must be a non-negative integer", err))
			return
		}
		horizon = parsed
	}

	// The fit is blocking and potentially long; bound it by the configured
	// timeout on top of the caller's own cancellation.
	ctx, cancel := contextWithTimeout(r, a.cfg.Forecast.FitTimeout)
	defer cancel()

	result, err := a.engine.Forecast(ctx, s.Daily(), horizon)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// contextWithTimeout layers the configured timeout over the request context.
func contextWithTimeout(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), timeout)
}

func (a *Application) handleSummary(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFrom(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, report.BuildSummary(s.Table, s.Daily()))
}

// queryRequest is an ad-hoc SQL statement against the session table.
type queryRequest struct {
	SQL string `json:"sql" validate:"required"`
}

func (a *Application) handleQuery(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFrom(w, r)
	if !ok {
		return
	}

	var req queryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		a.renderError(w, r, errors.NewValidationError("invalid request body", err))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.renderError(w, r, errors.NewValidationError("sql is required", err))
		return
	}

	executor, err := query.NewExecutor(r.Context(), s.Table, a.logger)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	defer executor.Close()

	result, err := executor.Query(r.Context(), req.SQL)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// answerRequest is a question for the templated responder.
type answerRequest struct {
	Question string `json:"question" validate:"required"`
}

func (a *Application) handleAnswer(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFrom(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		a.renderError(w, r, errors.NewValidationError("invalid request body", err))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.renderError(w, r, errors.NewValidationError("question is required", err))
		return
	}

	series := s.Daily()
	summary := report.BuildSummary(s.Table, series)
	answerer := report.NewAnswerer(s.Table, series, summary)
	render.JSON(w, r, answerer.Answer(req.Question))
}

// loanRequest carries the amortization inputs. Domain bounds are enforced by
// the calculator itself so CLI and HTTP callers share one validation path.
type loanRequest struct {
	Principal     float64 `json:"principal"`
	AnnualRatePct float64 `json:"annual_rate_pct"`
	TermMonths    int     `json:"term_months"`
	Policy        string  `json:"policy" validate:"omitempty,oneof=spread fixed"`
	AvgDailySales float64 `json:"avg_daily_sales" validate:"omitempty,gt=0"`
}

// loanResponse bundles the schedule with its optional comparison and payback
// context.
type loanResponse struct {
	Schedule   *finance.LoanSchedule   `json:"schedule"`
	Comparison *finance.LoanComparison `json:"comparison,omitempty"`
	Payback    *finance.PaybackContext `json:"payback,omitempty"`
}

func (a *Application) handleLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		a.renderError(w, r, errors.NewValidationError("invalid request body", err))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.renderError(w, r, errors.NewValidationError("invalid loan request", err))
		return
	}

	schedule, err := finance.Amortize(req.Principal, req.AnnualRatePct, req.TermMonths)
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	resp := loanResponse{Schedule: schedule}

	if req.Policy != "" {
		var policy finance.ComparisonPolicy = finance.DefaultSpreadPolicy
		if req.Policy == "fixed" {
			policy = finance.DefaultFixedRatePolicy
		}
		comparison, err := finance.Compare(req.Principal, req.AnnualRatePct, req.TermMonths, policy)
		if err != nil {
			a.renderError(w, r, err)
			return
		}
		resp.Comparison = comparison
	}

	if req.AvgDailySales > 0 {
		payback := finance.Payback(schedule, req.AvgDailySales)
		resp.Payback = &payback
	}

	render.JSON(w, r, resp)
}

// abTestRequest carries the two conversion counts.
type abTestRequest struct {
	ControlConversions int `json:"control_conversions"`
	VariantConversions int `json:"variant_conversions"`
}

func (a *Application) handleABTest(w http.ResponseWriter, r *http.Request) {
	var req abTestRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		a.renderError(w, r, errors.NewValidationError("invalid request body", err))
		return
	}

	result, err := finance.ABTestSignificance(req.ControlConversions, req.VariantConversions)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}
