package pncp

import "errors"

// ErrUpstreamUnavailable describes a recency aggregation in which every
// partition failed and nothing was collected. The pipeline reports it as
// AggregatedResult.UpstreamUnavailable; callers that need an error use this.
var ErrUpstreamUnavailable = errors.New("upstream unavailable: no partition returned data")
