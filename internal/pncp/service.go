package pncp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/farxc/pncp_wrapper/internal/logger"
	"github.com/farxc/pncp_wrapper/internal/metrics"
	"github.com/farxc/pncp_wrapper/internal/pncp/aggregate"
	"github.com/farxc/pncp_wrapper/internal/pncp/catalogue"
	"github.com/farxc/pncp_wrapper/internal/pncp/client"
	"github.com/farxc/pncp_wrapper/internal/pncp/types"
	"github.com/farxc/pncp_wrapper/internal/pncp/utils"
)

const (
	KindRecent           = "recent"
	KindOpenForProposals = "open_for_proposals"
	KindPublished        = "published"
)

type Config struct {
	MinPageSize  int
	MaxPageSize  int
	DefaultDays  int
	DefaultLimit int
	// Location decides what "today" is for windows and default cutoffs.
	Location *time.Location
}

// Service is the entry point for every aggregation: it validates a query,
// turns it into partitions and runs them through the core pipeline.
type Service struct {
	cfg       Config
	catalogue *catalogue.Catalogue
	walker    *aggregate.Walker
	fanout    *aggregate.FanOut
	validate  *validator.Validate
	now       func() time.Time

	appLogger *logger.Logger
	metrics   *metrics.Metrics
}

type Option func(*serviceOptions)

type serviceOptions struct {
	pacer aggregate.Pacer
	now   func() time.Time
}

// WithPacer spaces every upstream request made by the service. One pacer is
// shared by all requests the service handles.
func WithPacer(p aggregate.Pacer) Option {
	return func(o *serviceOptions) {
		o.pacer = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		o.now = now
	}
}

func NewService(fetcher aggregate.PageFetcher, cat *catalogue.Catalogue, cfg Config, appLogger *logger.Logger, m *metrics.Metrics, opts ...Option) *Service {
	o := serviceOptions{pacer: aggregate.NewPacer(0), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.MinPageSize <= 0 {
		cfg.MinPageSize = client.DefaultMinPageSize
	}
	if cfg.MaxPageSize < cfg.MinPageSize {
		cfg.MaxPageSize = client.DefaultMaxPageSize
	}
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = 3
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	walker := aggregate.NewWalker(fetcher, appLogger, aggregate.WithPacer(o.pacer), aggregate.WithMetrics(m))

	return &Service{
		cfg:       cfg,
		catalogue: cat,
		walker:    walker,
		fanout:    aggregate.NewFanOut(walker, appLogger, m),
		validate:  newValidator(),
		now:       o.now,
		appLogger: appLogger,
		metrics:   m,
	}
}

func (s *Service) Catalogue() *catalogue.Catalogue {
	return s.catalogue
}

func (s *Service) today() time.Time {
	return s.now().In(s.cfg.Location)
}

// Window returns the range covered by a recency aggregation over days:
// from today minus days minus one buffer day, to today.
func (s *Service) Window(days int) types.Window {
	today := s.today()
	return types.Window{
		From: utils.FormatCompactDate(today.AddDate(0, 0, -(days + 1))),
		To:   utils.FormatCompactDate(today),
		Days: days,
	}
}

func (s *Service) NewRecentQuery() RecentQuery {
	return RecentQuery{
		Days:     s.cfg.DefaultDays,
		Limit:    s.cfg.DefaultLimit,
		PageSize: s.cfg.MaxPageSize,
	}
}

func (s *Service) NewOpenQuery() OpenQuery {
	return OpenQuery{
		Modality:   6,
		CutoffDate: utils.FormatCompactDate(s.today()),
		Page:       1,
		PageSize:   s.cfg.MaxPageSize,
		AllPages:   true,
	}
}

func (s *Service) NewPublishedQuery() PublishedQuery {
	return PublishedQuery{
		Page:     1,
		PageSize: s.cfg.MaxPageSize,
		AllPages: true,
	}
}

// PageSize clamps a requested page size to the configured bounds.
func (s *Service) PageSize(n int) int {
	return client.ClampPageSize(n, s.cfg.MinPageSize, s.cfg.MaxPageSize)
}

// Recent fans out over the requested modalities (or the catalogue's default
// list) for the window ending today, dedupes, filters, ranks and truncates.
//
// Partition and page failures never fail the call; they are counted in
// FailedPartitions and, when nothing at all came back, UpstreamUnavailable.
// Only validation errors and cancellation of ctx are returned.
func (s *Service) Recent(ctx context.Context, q RecentQuery) (*types.AggregatedResult, error) {
	const component = "RecentAggregation"

	if err := validateQuery(s.validate, q); err != nil {
		return nil, err
	}
	if q.Filter.MinValue != nil && q.Filter.MaxValue != nil && q.Filter.MinValue.GreaterThan(*q.Filter.MaxValue) {
		return nil, &ValidationError{Field: "minValue", Message: "must not exceed maxValue"}
	}

	modalities := q.Modalities
	if len(modalities) == 0 {
		modalities = s.catalogue.Recent()
	}

	window := s.Window(q.Days)
	pageSize := s.PageSize(q.PageSize)

	partitions := make([]types.Partition, 0, len(modalities))
	for _, code := range modalities {
		partitions = append(partitions, types.Partition{
			Endpoint:  types.EndpointPublished,
			Modality:  code,
			StartDate: window.From,
			EndDate:   window.To,
			PageSize:  pageSize,
			State:     q.State,
		})
	}

	runID := uuid.NewString()
	start := time.Now()
	s.appLogger.Info(component, "Starting aggregation: run=%s window=%s..%s modalities=%v limit=%d", runID, window.From, window.To, modalities, q.Limit)

	fan, err := s.fanout.Run(ctx, partitions)
	if err != nil {
		s.metrics.IncAggregation(KindRecent, outcomeOf(err))
		s.appLogger.Warn(component, "Aggregation aborted: run=%s error=%v", runID, err)
		return nil, err
	}

	unique := aggregate.Dedupe(fan.Records)
	s.metrics.AddDuplicatesDropped(len(fan.Records) - len(unique))

	filtered := q.Filter.Apply(unique)
	s.catalogue.Annotate(filtered)

	res := aggregate.Assemble(aggregate.Rank(filtered), window, q.Limit)
	res.ID = runID
	res.FailedPartitions = fan.Failed
	res.UpstreamUnavailable = fan.Unavailable()

	outcome := "ok"
	switch {
	case res.UpstreamUnavailable:
		outcome = "unavailable"
		s.appLogger.Error(component, "Aggregation found nothing: run=%s error=%v", runID, ErrUpstreamUnavailable)
	case fan.Failed > 0:
		outcome = "partial"
	}
	s.metrics.IncAggregation(KindRecent, outcome)

	s.appLogger.Info(component, "Aggregation complete: run=%s pooled=%d unique=%d found=%d returned=%d failedPartitions=%d duration=%s",
		runID, len(fan.Records), len(unique), res.TotalFound, res.TotalReturned, res.FailedPartitions, time.Since(start).Round(time.Millisecond))

	return &res, nil
}

// OpenForProposals walks the open-for-proposals listing of one modality in
// strict mode.
func (s *Service) OpenForProposals(ctx context.Context, q OpenQuery) (*types.PageResult, error) {
	if err := validateQuery(s.validate, q); err != nil {
		return nil, err
	}

	p := types.Partition{
		Endpoint:   types.EndpointOpenForProposals,
		Modality:   q.Modality,
		CutoffDate: q.CutoffDate,
		PageSize:   s.PageSize(q.PageSize),
		State:      q.State,
	}
	return s.walkOne(ctx, KindOpenForProposals, p, q.Page, q.AllPages)
}

// Published walks the published-in-window listing of one modality in strict
// mode.
func (s *Service) Published(ctx context.Context, q PublishedQuery) (*types.PageResult, error) {
	if err := validateQuery(s.validate, q); err != nil {
		return nil, err
	}
	if q.StartDate > q.EndDate {
		return nil, &ValidationError{Field: "startDate", Message: fmt.Sprintf("must not be after endDate %s", q.EndDate)}
	}

	p := types.Partition{
		Endpoint:  types.EndpointPublished,
		Modality:  q.Modality,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		PageSize:  s.PageSize(q.PageSize),
		State:     q.State,
	}
	return s.walkOne(ctx, KindPublished, p, q.Page, q.AllPages)
}

func (s *Service) walkOne(ctx context.Context, kind string, p types.Partition, page int, allPages bool) (*types.PageResult, error) {
	const component = "PartitionQuery"

	s.appLogger.Debug(component, "Walking partition: kind=%s partition=%q page=%d allPages=%t", kind, p.String(), page, allPages)

	walked, err := s.walker.Walk(ctx, p, aggregate.WalkOptions{Mode: aggregate.ModeStrict, Page: page, AllPages: allPages})
	if err != nil {
		s.metrics.IncAggregation(kind, outcomeOf(err))
		s.appLogger.Warn(component, "Partition query failed: kind=%s partition=%q error=%v", kind, p.String(), err)
		return nil, err
	}

	records := walked.Records
	if records == nil {
		records = []types.Record{}
	}
	s.catalogue.Annotate(records)
	s.metrics.IncAggregation(kind, "ok")

	return &types.PageResult{
		Pagination: types.Pagination{
			CurrentPage: walked.CurrentPage,
			TotalPages:  walked.TotalPages,
			TotalCount:  walked.TotalCount,
			PageSize:    p.PageSize,
		},
		Records: records,
	}, nil
}

func outcomeOf(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return "error"
}
