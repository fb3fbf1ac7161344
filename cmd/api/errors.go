package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/farxc/pncp_wrapper/internal/pncp"
	"github.com/farxc/pncp_wrapper/internal/pncp/client"
)

// writePipelineError maps a pipeline failure onto an HTTP status.
func (app *application) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	const component = "HTTP"

	var validationErr *pncp.ValidationError
	var upstreamErr *client.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		writeJSONError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &upstreamErr):
		app.logger.Error(component, "Upstream request failed: path=%s error=%v", r.URL.Path, err)
		writeJSONErrorDetail(w, upstreamErr.HTTPStatus(), "upstream request failed", upstreamErr.Detail())
	case errors.Is(err, context.DeadlineExceeded):
		app.logger.Warn(component, "Request timed out: path=%s", r.URL.Path)
		writeJSONErrorDetail(w, http.StatusGatewayTimeout, "request timed out", err.Error())
	case errors.Is(err, context.Canceled):
		// The client is gone; nobody reads the body.
		app.logger.Debug(component, "Request cancelled by client: path=%s", r.URL.Path)
	default:
		app.logger.Error(component, "Unexpected error: path=%s error=%v", r.URL.Path, err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

// isUpstreamFailure reports whether err came from the registry itself, as
// opposed to the caller's input or the caller hanging up.
func isUpstreamFailure(err error) bool {
	var upstreamErr *client.UpstreamError
	return errors.As(err, &upstreamErr) && !errors.Is(err, context.Canceled)
}
