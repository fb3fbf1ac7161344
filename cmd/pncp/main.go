package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/farxc/pncp_wrapper/internal/env"
	"github.com/farxc/pncp_wrapper/internal/logger"
	"github.com/farxc/pncp_wrapper/internal/pncp"
	"github.com/farxc/pncp_wrapper/internal/pncp/aggregate"
	"github.com/farxc/pncp_wrapper/internal/pncp/catalogue"
	"github.com/farxc/pncp_wrapper/internal/pncp/client"
	"github.com/farxc/pncp_wrapper/internal/pncp/export"
)

type config struct {
	baseURL      string
	timeout      time.Duration
	minPageSize  int
	maxPageSize  int
	pageInterval time.Duration
	timezone     string
	modalities   string
}

func parseDecimalFlag(name, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("-%s: %w", name, err)
	}
	return &d, nil
}

func parseModalities(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		code, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("-modality: %q is not a code", part)
		}
		out = append(out, code)
	}
	return out, nil
}

func run(ctx context.Context, args []string) error {
	const component = "Main"

	cfg := config{
		baseURL:      env.GetString("PNCP_BASE_URL", client.DefaultBaseURL),
		timeout:      env.GetDuration("PNCP_TIMEOUT", 30*time.Second),
		minPageSize:  env.GetInt("PNCP_MIN_PAGE_SIZE", client.DefaultMinPageSize),
		maxPageSize:  env.GetInt("PNCP_MAX_PAGE_SIZE", client.DefaultMaxPageSize),
		pageInterval: env.GetDuration("PNCP_PAGE_INTERVAL", 250*time.Millisecond),
		timezone:     env.GetString("TIMEZONE", "America/Sao_Paulo"),
		modalities:   env.GetString("MODALITIES_FILE", ""),
	}

	fs := flag.NewFlagSet("pncp", flag.ContinueOnError)
	daysPtr := fs.Int("days", env.GetInt("RECENT_DEFAULT_DAYS", 3), "Days to look back")
	limitPtr := fs.Int("limit", env.GetInt("RECENT_DEFAULT_LIMIT", 50), "Maximum notices to print")
	modalityPtr := fs.String("modality", "", "Comma-separated modality codes (default: catalogue recency list)")
	statePtr := fs.String("state", "", "Two-letter state code")
	termPtr := fs.String("term", "", "Case and accent insensitive search term")
	minPtr := fs.String("min", "", "Minimum estimated value")
	maxPtr := fs.String("max", "", "Maximum estimated value")
	formatPtr := fs.String("format", "table", "Output format: table, csv, json")
	encodingPtr := fs.String("encoding", "utf-8", "CSV encoding: utf-8, windows-1252")
	logLevelPtr := fs.String("loglevel", "warn", "Log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	appLogger, err := logger.New(logger.ParseLevel(*logLevelPtr), "console", "stderr")
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	modalities, err := parseModalities(*modalityPtr)
	if err != nil {
		return err
	}
	minValue, err := parseDecimalFlag("min", *minPtr)
	if err != nil {
		return err
	}
	maxValue, err := parseDecimalFlag("max", *maxPtr)
	if err != nil {
		return err
	}
	enc, err := export.ParseEncoding(*encodingPtr)
	if err != nil {
		return err
	}

	cat, err := catalogue.Load(cfg.modalities)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(cfg.timezone)
	if err != nil {
		return err
	}

	upstream := client.New(client.Config{
		BaseURL:     cfg.baseURL,
		Timeout:     cfg.timeout,
		MinPageSize: cfg.minPageSize,
		MaxPageSize: cfg.maxPageSize,
	}, appLogger, nil)

	service := pncp.NewService(upstream, cat, pncp.Config{
		MinPageSize: cfg.minPageSize,
		MaxPageSize: cfg.maxPageSize,
		Location:    loc,
	}, appLogger, nil, pncp.WithPacer(aggregate.NewPacer(cfg.pageInterval)))

	q := service.NewRecentQuery()
	q.Days = *daysPtr
	q.Limit = *limitPtr
	q.Modalities = modalities
	q.State = strings.ToUpper(*statePtr)
	q.Filter = aggregate.Filter{Term: *termPtr, MinValue: minValue, MaxValue: maxValue}

	started := time.Now()
	res, err := service.Recent(ctx, q)
	if err != nil {
		return err
	}
	appLogger.Info(component, "Aggregation finished: run=%s found=%d returned=%d duration=%s", res.ID, res.TotalFound, res.TotalReturned, time.Since(started).Round(time.Millisecond))

	if err := render(os.Stdout, res, *formatPtr, enc); err != nil {
		return err
	}
	if res.UpstreamUnavailable {
		return pncp.ErrUpstreamUnavailable
	}
	return nil
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "pncp:", err)
		if errors.Is(err, pncp.ErrUpstreamUnavailable) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
