package client

import (
	"fmt"
	"net/http"

	"github.com/farxc/pncp_wrapper/internal/pncp/types"
)

// UpstreamError describes one failed page request: a transport failure, a
// timeout, a non-2xx status or a body that could not be decoded.
type UpstreamError struct {
	Endpoint   types.Endpoint
	Page       int
	StatusCode int
	Body       string
	Timeout    bool
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("upstream %s page %d: status %d: %s", e.Endpoint.Name(), e.Page, e.StatusCode, e.Body)
	case e.Timeout:
		return fmt.Sprintf("upstream %s page %d: timeout: %v", e.Endpoint.Name(), e.Page, e.Err)
	default:
		return fmt.Sprintf("upstream %s page %d: %v", e.Endpoint.Name(), e.Page, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// HTTPStatus is the status a caller should surface: the upstream status
// when it reported an error, 504 on timeout, 502 otherwise.
func (e *UpstreamError) HTTPStatus() int {
	if e.StatusCode >= 400 {
		return e.StatusCode
	}
	if e.Timeout {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// Detail is the most useful human-readable cause.
func (e *UpstreamError) Detail() string {
	if e.Body != "" {
		return e.Body
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.HTTPStatus())
}
