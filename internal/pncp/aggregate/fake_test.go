package aggregate

import (
	"context"
	"errors"
	"sync"

	"github.com/farxc/pncp_wrapper/internal/pncp/types"
)

var errBoom = errors.New("boom")

type fetchCall struct {
	partition string
	page      int
}

// fakeFetcher serves canned pages keyed by partition string.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string][]types.Page
	fail  map[string]map[int]error
	calls []fetchCall
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: make(map[string][]types.Page),
		fail:  make(map[string]map[int]error),
	}
}

func (f *fakeFetcher) serve(p types.Partition, pages ...types.Page) {
	f.pages[p.String()] = pages
}

func (f *fakeFetcher) failOn(p types.Partition, page int, err error) {
	if f.fail[p.String()] == nil {
		f.fail[p.String()] = make(map[int]error)
	}
	f.fail[p.String()][page] = err
}

func (f *fakeFetcher) FetchPage(ctx context.Context, p types.Partition, page int) (*types.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fetchCall{partition: p.String(), page: page})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.fail[p.String()][page]; err != nil {
		return nil, err
	}

	pages := f.pages[p.String()]
	if page < 1 || page > len(pages) {
		return &types.Page{CurrentPage: page, TotalPages: len(pages)}, nil
	}
	pg := pages[page-1]
	return &pg, nil
}

func (f *fakeFetcher) pagesFetched(p types.Partition) []int {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []int
	for _, c := range f.calls {
		if c.partition == p.String() {
			out = append(out, c.page)
		}
	}
	return out
}

type countingPacer struct {
	waits int
}

func (c *countingPacer) Wait(ctx context.Context) error {
	c.waits++
	return ctx.Err()
}

func rec(cn string, dates ...string) types.Record {
	r := types.Record{ControlNumber: cn}
	if len(dates) > 0 {
		r.InclusionDate = dates[0]
	}
	if len(dates) > 1 {
		r.PncpPublicationDate = dates[1]
	}
	if len(dates) > 2 {
		r.LastUpdateDate = dates[2]
	}
	return r
}

func page(n, total int, records ...types.Record) types.Page {
	return types.Page{Records: records, CurrentPage: n, TotalPages: total, TotalCount: len(records)}
}

func publishedPartition(modality int) types.Partition {
	return types.Partition{
		Endpoint:  types.EndpointPublished,
		Modality:  modality,
		StartDate: "20250810",
		EndDate:   "20250813",
		PageSize:  50,
	}
}

func controlNumbers(records []types.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ControlNumber)
	}
	return out
}

func openPartition(modality int) types.Partition {
	return types.Partition{
		Endpoint:   types.EndpointOpenForProposals,
		Modality:   modality,
		CutoffDate: "20250813",
		PageSize:   50,
	}
}
