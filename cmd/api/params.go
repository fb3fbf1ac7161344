package main

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/farxc/pncp_wrapper/internal/pncp"
	"github.com/farxc/pncp_wrapper/internal/pncp/aggregate"
)

// queryParams reads typed query parameters, keeping the current value when a
// parameter is absent. The first malformed parameter is kept in err.
type queryParams struct {
	values url.Values
	err    error
}

func newQueryParams(values url.Values) *queryParams {
	return &queryParams{values: values}
}

func (p *queryParams) fail(field, message string) {
	if p.err == nil {
		p.err = &pncp.ValidationError{Field: field, Message: message}
	}
}

func (p *queryParams) str(name string, dst *string) {
	if v := strings.TrimSpace(p.values.Get(name)); v != "" {
		*dst = v
	}
}

func (p *queryParams) int(name string, dst *int) {
	v := strings.TrimSpace(p.values.Get(name))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(name, "must be an integer")
		return
	}
	*dst = n
}

func (p *queryParams) bool(name string, dst *bool) {
	v := strings.TrimSpace(p.values.Get(name))
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(name, "must be true or false")
		return
	}
	*dst = b
}

// intList accepts both modality=6,8 and modality=6&modality=8.
func (p *queryParams) intList(name string, dst *[]int) {
	var out []int
	for _, raw := range p.values[name] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				p.fail(name, "must be a comma-separated list of integers")
				return
			}
			out = append(out, n)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}

func (p *queryParams) decimal(name string, dst **decimal.Decimal) {
	v := strings.TrimSpace(p.values.Get(name))
	if v == "" {
		return
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		p.fail(name, "must be a decimal number")
		return
	}
	*dst = &d
}

func (p *queryParams) recentQuery(q *pncp.RecentQuery) {
	p.int("days", &q.Days)
	p.intList("modality", &q.Modalities)
	p.int("limit", &q.Limit)
	p.int("pageSize", &q.PageSize)
	p.str("state", &q.State)
	q.State = strings.ToUpper(q.State)

	var f aggregate.Filter
	p.str("term", &f.Term)
	p.decimal("minValue", &f.MinValue)
	p.decimal("maxValue", &f.MaxValue)
	q.Filter = f
}

func (p *queryParams) openQuery(q *pncp.OpenQuery) {
	p.int("modality", &q.Modality)
	p.str("cutoffDate", &q.CutoffDate)
	p.int("page", &q.Page)
	p.int("pageSize", &q.PageSize)
	p.bool("allPages", &q.AllPages)
	p.str("state", &q.State)
	q.State = strings.ToUpper(q.State)
}

func (p *queryParams) publishedQuery(q *pncp.PublishedQuery) {
	p.int("modality", &q.Modality)
	p.str("startDate", &q.StartDate)
	p.str("endDate", &q.EndDate)
	p.int("page", &q.Page)
	p.int("pageSize", &q.PageSize)
	p.bool("allPages", &q.AllPages)
	p.str("state", &q.State)
	q.State = strings.ToUpper(q.State)
}
