package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/farxc/pncp_wrapper/internal/logger"
	"github.com/farxc/pncp_wrapper/internal/pncp"
	"github.com/farxc/pncp_wrapper/internal/pncp/fallback"
)

const version = "0.1.0"

type application struct {
	config   config
	service  *pncp.Service
	fallback fallback.Provider
	logger   *logger.Logger
	registry *prometheus.Registry
}

type config struct {
	addr           string
	requestTimeout time.Duration
	timezone       string
	pncp           pncpConfig
	recent         recentConfig
	degraded       degradedConfig
	log            logConfig
}

type pncpConfig struct {
	baseURL      string
	timeout      time.Duration
	userAgent    string
	minPageSize  int
	maxPageSize  int
	pageInterval time.Duration
}

type recentConfig struct {
	defaultDays    int
	defaultLimit   int
	modalities     []int
	modalitiesFile string
}

type degradedConfig struct {
	enabled      bool
	fallbackFile string
}

type logConfig struct {
	level  string
	format string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5, "application/json", "text/csv"))

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(app.config.requestTimeout))

	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Get("/modalities", app.handleGetModalities)
		r.Route("/recent", func(r chi.Router) {
			r.Get("/", app.handleGetRecent)
			r.Get("/export", app.handleExportRecent)
		})
		r.Get("/open-for-proposals", app.handleGetOpenForProposals)
		r.Get("/published", app.handleGetPublished)
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	const component = "Server"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: app.config.requestTimeout + 10*time.Second,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	app.logger.Info(component, "Server started: addr=%s version=%s degraded=%t", app.config.addr, version, app.config.degraded.enabled)
	return srv.ListenAndServe()
}
