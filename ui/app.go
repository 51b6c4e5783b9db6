// Package ui serves the public prediction API (chi) and the internal admin
// API (gin).
package ui

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gobrix/app"
	"gobrix/internal"
)

// Services are the app services the public API exposes.
type Services struct {
	Predictions *app.PredictionService
	Batch       *app.BatchPredictor
	Inference   *app.InferenceService
	Calibration *app.CalibrationService
	GDD         *app.GDDService
}

// Config holds public API configuration
type Config struct {
	Port string
}

// App is the public JSON API.
type App struct {
	router   *chi.Mux
	config   Config
	services Services
	logger   *internal.Logger
}

// NewApp creates the public API and its routes.
func NewApp(config Config, services Services, logger *internal.Logger) *App {
	a := &App{
		router:   chi.NewRouter(),
		config:   config,
		services: services,
		logger:   logger.With("api"),
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)

	a.router.Route("/v1", func(r chi.Router) {
		r.Post("/predictions", a.handlePredict)
		r.Post("/predictions/batch", a.handleBatchPredict)
		r.Post("/predictions/infer", a.handleInfer)
		r.Get("/predictions/report", a.handleReport)

		r.Post("/measurements", a.handleRecordMeasurement)

		r.Get("/gdd/versions", a.handleGDDVersions)
		r.Get("/gdd/accumulate", a.handleGDDAccumulate)
	})
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.router
}

// Start listens on the configured port.
func (a *App) Start() error {
	port := a.config.Port
	if port == "" {
		port = "8080"
	}
	addr := fmt.Sprintf(":%s", port)
	a.logger.Info("public API listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}
