package main

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/farxc/pncp_wrapper/internal/env"
	"github.com/farxc/pncp_wrapper/internal/logger"
	"github.com/farxc/pncp_wrapper/internal/metrics"
	"github.com/farxc/pncp_wrapper/internal/pncp"
	"github.com/farxc/pncp_wrapper/internal/pncp/aggregate"
	"github.com/farxc/pncp_wrapper/internal/pncp/catalogue"
	"github.com/farxc/pncp_wrapper/internal/pncp/client"
	"github.com/farxc/pncp_wrapper/internal/pncp/fallback"
)

func loadConfig() config {
	return config{
		addr:           env.GetString("ADDR", ":8080"),
		requestTimeout: env.GetDuration("REQUEST_TIMEOUT", 180*time.Second),
		timezone:       env.GetString("TIMEZONE", "America/Sao_Paulo"),
		pncp: pncpConfig{
			baseURL:      env.GetString("PNCP_BASE_URL", client.DefaultBaseURL),
			timeout:      env.GetDuration("PNCP_TIMEOUT", 30*time.Second),
			userAgent:    env.GetString("PNCP_USER_AGENT", "pncp-wrapper/"+version),
			minPageSize:  env.GetInt("PNCP_MIN_PAGE_SIZE", client.DefaultMinPageSize),
			maxPageSize:  env.GetInt("PNCP_MAX_PAGE_SIZE", client.DefaultMaxPageSize),
			pageInterval: env.GetDuration("PNCP_PAGE_INTERVAL", 250*time.Millisecond),
		},
		recent: recentConfig{
			defaultDays:    env.GetInt("RECENT_DEFAULT_DAYS", 3),
			defaultLimit:   env.GetInt("RECENT_DEFAULT_LIMIT", 50),
			modalities:     env.GetIntSlice("RECENT_MODALITIES", nil),
			modalitiesFile: env.GetString("MODALITIES_FILE", ""),
		},
		degraded: degradedConfig{
			enabled:      env.GetBool("DEGRADED_MODE", false),
			fallbackFile: env.GetString("FALLBACK_FILE", ""),
		},
		log: logConfig{
			level:  env.GetString("LOG_LEVEL", "info"),
			format: env.GetString("LOG_FORMAT", "json"),
		},
	}
}

// newApplication wires the pipeline from cfg. The registry receives every
// collector and backs /metrics.
func newApplication(cfg config, appLogger *logger.Logger, registry *prometheus.Registry) (*application, error) {
	m := metrics.New(registry)

	cat, err := catalogue.Load(cfg.recent.modalitiesFile)
	if err != nil {
		return nil, err
	}
	if len(cfg.recent.modalities) > 0 {
		if err := cat.SetRecent(cfg.recent.modalities); err != nil {
			return nil, err
		}
	}

	loc, err := time.LoadLocation(cfg.timezone)
	if err != nil {
		return nil, err
	}

	upstream := client.New(client.Config{
		BaseURL:     cfg.pncp.baseURL,
		Timeout:     cfg.pncp.timeout,
		UserAgent:   cfg.pncp.userAgent,
		MinPageSize: cfg.pncp.minPageSize,
		MaxPageSize: cfg.pncp.maxPageSize,
	}, appLogger, m)

	service := pncp.NewService(upstream, cat, pncp.Config{
		MinPageSize:  cfg.pncp.minPageSize,
		MaxPageSize:  cfg.pncp.maxPageSize,
		DefaultDays:  cfg.recent.defaultDays,
		DefaultLimit: cfg.recent.defaultLimit,
		Location:     loc,
	}, appLogger, m, pncp.WithPacer(aggregate.NewPacer(cfg.pncp.pageInterval)))

	app := &application{
		config:   cfg,
		service:  service,
		logger:   appLogger,
		registry: registry,
	}

	if cfg.degraded.enabled {
		provider, err := fallback.Load(cfg.degraded.fallbackFile)
		if err != nil {
			return nil, err
		}
		app.fallback = provider
	}

	return app, nil
}

func main() {
	const component = "Main"

	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg := loadConfig()

	appLogger, err := logger.New(logger.ParseLevel(cfg.log.level), cfg.log.format)
	if err != nil {
		panic(err)
	}
	defer appLogger.Sync()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := newApplication(cfg, appLogger, registry)
	if err != nil {
		appLogger.Fatal(component, "Failed to initialise application: %v", err)
	}

	mux := app.mount()

	if err := app.run(mux); err != nil {
		appLogger.Fatal(component, "Server stopped: %v", err)
	}
}
