package aggregate

import (
	"context"

	"github.com/farxc/pncp_wrapper/internal/logger"
	"github.com/farxc/pncp_wrapper/internal/metrics"
	"github.com/farxc/pncp_wrapper/internal/pncp/types"
)

// PageFetcher fetches one page of one partition.
type PageFetcher interface {
	FetchPage(ctx context.Context, p types.Partition, page int) (*types.Page, error)
}

// Mode selects what a walk does when a page after the first one fails.
type Mode int

const (
	// ModeStrict aborts the walk and surfaces the page error.
	ModeStrict Mode = iota
	// ModeBestEffort logs the failure, drops the page and carries on.
	ModeBestEffort
)

func (m Mode) String() string {
	if m == ModeBestEffort {
		return "best-effort"
	}
	return "strict"
}

type WalkOptions struct {
	Mode Mode
	// Page is the page the caller asked for; zero means 1.
	Page int
	// AllPages walks 2..totalPages when Page is 1.
	AllPages bool
}

type WalkResult struct {
	Records      []types.Record
	CurrentPage  int
	TotalPages   int
	TotalCount   int
	PagesFetched int
	SkippedPages []int
}

// Walker drives one partition to completion, one page at a time.
type Walker struct {
	fetcher PageFetcher
	pacer   Pacer
	logger  *logger.Logger
	metrics *metrics.Metrics
}

type WalkerOption func(*Walker)

// WithPacer sets the policy spacing consecutive upstream requests.
func WithPacer(p Pacer) WalkerOption {
	return func(w *Walker) {
		w.pacer = p
	}
}

func WithMetrics(m *metrics.Metrics) WalkerOption {
	return func(w *Walker) {
		w.metrics = m
	}
}

func NewWalker(fetcher PageFetcher, appLogger *logger.Logger, opts ...WalkerOption) *Walker {
	w := &Walker{
		fetcher: fetcher,
		pacer:   NewPacer(0),
		logger:  appLogger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk fetches the requested page and, when asked for every page starting
// at page 1, the remaining pages in order. totalPages is taken from the
// first page only. Records keep upstream order within a page and page order
// across pages.
//
// A first-page failure is returned as *PartitionError in both modes.
// Cancellation of ctx always aborts the walk.
func (w *Walker) Walk(ctx context.Context, p types.Partition, opts WalkOptions) (*WalkResult, error) {
	const component = "PageWalker"

	start := opts.Page
	if start < 1 {
		start = 1
	}

	if err := w.pacer.Wait(ctx); err != nil {
		return nil, err
	}
	first, err := w.fetcher.FetchPage(ctx, p, start)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &PartitionError{Partition: p, Err: err}
	}

	res := &WalkResult{
		Records:      append(make([]types.Record, 0, len(first.Records)), first.Records...),
		CurrentPage:  first.CurrentPage,
		TotalPages:   first.TotalPages,
		TotalCount:   first.TotalCount,
		PagesFetched: 1,
	}

	if !opts.AllPages || start != 1 || first.TotalPages <= 1 {
		return res, nil
	}

	w.logger.Debug(component, "Walking remaining pages: partition=%q totalPages=%d mode=%s", p.String(), first.TotalPages, opts.Mode)

	for page := 2; page <= first.TotalPages; page++ {
		if err := w.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		next, err := w.fetcher.FetchPage(ctx, p, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if opts.Mode == ModeStrict {
				return nil, &PageError{Partition: p, Page: page, Err: err}
			}
			w.logger.Warn(component, "Page skipped: partition=%q page=%d/%d error=%v", p.String(), page, first.TotalPages, err)
			w.metrics.IncPagesSkipped(p.Endpoint.Name())
			res.SkippedPages = append(res.SkippedPages, page)
			continue
		}

		res.Records = append(res.Records, next.Records...)
		res.PagesFetched++
	}

	return res, nil
}
