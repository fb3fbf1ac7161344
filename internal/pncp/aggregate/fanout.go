package aggregate

import (
	"context"
	"errors"

	"github.com/farxc/pncp_wrapper/internal/logger"
	"github.com/farxc/pncp_wrapper/internal/metrics"
	"github.com/farxc/pncp_wrapper/internal/pncp/types"
)

// PartitionReport records what happened to one partition of a fan-out.
type PartitionReport struct {
	Partition    types.Partition
	Records      int
	PagesFetched int
	SkippedPages []int
	Err          error
}

func (r PartitionReport) Failed() bool {
	return r.Err != nil
}

type FanOutResult struct {
	Records []types.Record
	Reports []PartitionReport
	Failed  int
}

// Unavailable reports that nothing was collected because partitions failed,
// as opposed to upstream genuinely having no matching notices.
func (r *FanOutResult) Unavailable() bool {
	return len(r.Records) == 0 && r.Failed > 0
}

// FanOut walks a list of partitions one after the other in best-effort
// mode, concatenating their records in partition order.
type FanOut struct {
	walker  *Walker
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewFanOut(walker *Walker, appLogger *logger.Logger, m *metrics.Metrics) *FanOut {
	return &FanOut{walker: walker, logger: appLogger, metrics: m}
}

// Run never fails because of a single partition. It returns an error only
// when ctx is cancelled or the pacer refuses to wait.
func (f *FanOut) Run(ctx context.Context, partitions []types.Partition) (*FanOutResult, error) {
	const component = "FanOut"

	res := &FanOutResult{
		Records: []types.Record{},
		Reports: make([]PartitionReport, 0, len(partitions)),
	}

	for _, p := range partitions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		walked, err := f.walker.Walk(ctx, p, WalkOptions{Mode: ModeBestEffort, Page: 1, AllPages: true})
		if err != nil {
			var partErr *PartitionError
			if !errors.As(err, &partErr) {
				return nil, err
			}
			f.logger.Warn(component, "Partition skipped: partition=%q error=%v", p.String(), partErr.Err)
			f.metrics.IncPartitionsSkipped(p.Endpoint.Name())
			res.Failed++
			res.Reports = append(res.Reports, PartitionReport{Partition: p, Err: err})
			continue
		}

		f.logger.Debug(component, "Partition collected: partition=%q records=%d pages=%d skippedPages=%v",
			p.String(), len(walked.Records), walked.PagesFetched, walked.SkippedPages)

		res.Records = append(res.Records, walked.Records...)
		res.Reports = append(res.Reports, PartitionReport{
			Partition:    p,
			Records:      len(walked.Records),
			PagesFetched: walked.PagesFetched,
			SkippedPages: walked.SkippedPages,
		})
	}

	return res, nil
}
