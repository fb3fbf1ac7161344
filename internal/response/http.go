package response

import "github.com/farxc/pncp_wrapper/internal/pncp/types"

type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// RecentResponse is the recency aggregation as served over HTTP. Degraded
// marks records that came from the fallback provider instead of upstream.
type RecentResponse struct {
	types.AggregatedResult
	Degraded bool `json:"degraded"`
}

type PageResponse struct {
	Pagination types.Pagination `json:"pagination"`
	Degraded   bool             `json:"degraded"`
	Records    []types.Record   `json:"records"`
}

type HealthResponse struct {
	OK        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}
