package client

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/farxc/pncp_wrapper/internal/logger"
	"github.com/farxc/pncp_wrapper/internal/metrics"
	"github.com/farxc/pncp_wrapper/internal/pncp/types"
	"github.com/microcosm-cc/bluemonday"
)

var DefaultBaseURL = "https://pncp.gov.br/api/consulta"

const maxErrorBody = 4096

// Page size bounds documented by the registry.
const (
	DefaultMinPageSize = 10
	DefaultMaxPageSize = 50
)

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	UserAgent   string
	MinPageSize int
	MaxPageSize int
}

// Client issues single page requests against the registry query endpoints.
// It never retries; skip or abort decisions belong to the caller.
type Client struct {
	http      *http.Client
	cfg       Config
	sanitizer *bluemonday.Policy
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func New(cfg Config, appLogger *logger.Logger, m *metrics.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "pncp-wrapper/1.0"
	}
	if cfg.MinPageSize <= 0 {
		cfg.MinPageSize = DefaultMinPageSize
	}
	if cfg.MaxPageSize < cfg.MinPageSize {
		cfg.MaxPageSize = DefaultMaxPageSize
	}

	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		cfg:       cfg,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    appLogger,
		metrics:   m,
	}
}

// ClampPageSize bounds n to [minSize, maxSize]. A non-positive bound is ignored.
func ClampPageSize(n, minSize, maxSize int) int {
	if maxSize > 0 && n > maxSize {
		n = maxSize
	}
	if minSize > 0 && n < minSize {
		n = minSize
	}
	return n
}

// FetchPage requests one page of a partition and normalises the response.
// Every failure is returned as *UpstreamError.
func (c *Client) FetchPage(ctx context.Context, p types.Partition, page int) (*types.Page, error) {
	const component = "UpstreamClient"

	p.PageSize = ClampPageSize(p.PageSize, c.cfg.MinPageSize, c.cfg.MaxPageSize)
	target := c.cfg.BaseURL + p.Endpoint.String() + "?" + p.Params(page).Encode()
	endpoint := p.Endpoint.Name()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &UpstreamError{Endpoint: p.Endpoint, Page: page, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	c.logger.Debug(component, "Requesting page: partition=%q page=%d", p.String(), page)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, "error", time.Since(start))
		return nil, &UpstreamError{Endpoint: p.Endpoint, Page: page, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		c.metrics.ObserveUpstream(endpoint, "empty", time.Since(start))
		return &types.Page{Records: []types.Record{}, CurrentPage: page}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.ObserveUpstream(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamError{
			Endpoint:   p.Endpoint,
			Page:       page,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	result, err := decodePage(resp.Body, page, c.sanitizer)
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, "malformed", time.Since(start))
		return nil, &UpstreamError{
			Endpoint:   p.Endpoint,
			Page:       page,
			StatusCode: resp.StatusCode,
			Timeout:    isTimeout(err),
			Err:        err,
		}
	}

	c.metrics.ObserveUpstream(endpoint, "ok", time.Since(start))
	c.logger.Debug(component, "Page received: partition=%q page=%d/%d records=%d", p.String(), result.CurrentPage, result.TotalPages, len(result.Records))
	return result, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
