// Package app wires the analytics pipeline behind a chi HTTP surface. Every
// endpoint returns plain structured data for the rendering and export
// collaborators; no presentation formatting is embedded here.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"fairsquare/internal/config"
	"fairsquare/internal/forecast"
	"fairsquare/internal/infrastructure"
	"fairsquare/internal/session"
)

// Application holds the wired components behind the HTTP surface.
type Application struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *session.Store
	engine   *forecast.Engine
	validate *validator.Validate
	metrics  *infrastructure.Metrics
	server   *http.Server
}

// New builds the application from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Application {
	if logger == nil {
		logger = slog.Default()
	}

	a := &Application{
		cfg:      cfg,
		logger:   logger,
		store:    session.NewStore(logger),
		engine:   forecast.New(logger, forecast.Config{FourierOrder: cfg.Forecast.FourierOrder}),
		validate: validator.New(),
		metrics:  infrastructure.NewMetrics(),
	}

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return a
}

// Router assembles the chi route tree.
func (a *Application) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.traceMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(a.metrics.Middleware)

	r.Get("/healthz", a.handleHealth)
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/datasets", func(r chi.Router) {
			r.Post("/", a.handleCreateDataset)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", a.handleGetDataset)
				r.Put("/", a.handleReplaceDataset)
				r.Delete("/", a.handleDeleteDataset)
				r.Get("/daily", a.handleDailySeries)
				r.Get("/breakdown", a.handleBreakdown)
				r.Get("/forecast", a.handleForecast)
				r.Get("/summary", a.handleSummary)
				r.Post("/query", a.handleQuery)
				r.Post("/answer", a.handleAnswer)
			})
		})

		r.Post("/loan", a.handleLoan)
		r.Post("/abtest", a.handleABTest)
	})

	return r
}

// traceMiddleware copies the chi request ID into the logging trace context.
func (a *Application) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			r = r.WithContext(infrastructure.WithTraceID(r.Context(), requestID))
		}
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (a *Application) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		a.logger.Info("shutting down server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	infrastructure.CloseLogFile()
	return err
}

// handleHealth reports liveness.
func (a *Application) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","time":%q}`, time.Now().UTC().Format(time.RFC3339))
}
