package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/farxc/pncp_wrapper/internal/pncp"
	"github.com/farxc/pncp_wrapper/internal/pncp/aggregate"
	"github.com/farxc/pncp_wrapper/internal/pncp/export"
	"github.com/farxc/pncp_wrapper/internal/response"
)

const aggregationIDHeader = "X-Aggregation-Id"

// recent runs the recency aggregation for r and, in degraded mode,
// substitutes fallback notices when upstream produced nothing at all.
func (app *application) recent(ctx context.Context, r *http.Request) (*response.RecentResponse, error) {
	const component = "RecentHandler"

	params := newQueryParams(r.URL.Query())
	q := app.service.NewRecentQuery()
	params.recentQuery(&q)
	if params.err != nil {
		return nil, params.err
	}

	res, err := app.service.Recent(ctx, q)
	if err != nil {
		return nil, err
	}

	out := &response.RecentResponse{AggregatedResult: *res}
	if !res.UpstreamUnavailable || app.fallback == nil {
		return out, nil
	}

	records, err := app.fallback.Records(ctx)
	if err != nil {
		return nil, err
	}
	app.logger.Warn(component, "Serving fallback notices: run=%s reason=%q records=%d", res.ID, pncp.ErrUpstreamUnavailable, len(records))

	substitute := aggregate.Assemble(aggregate.Rank(q.Filter.Apply(records)), res.Window, q.Limit)
	substitute.ID = res.ID
	substitute.FailedPartitions = res.FailedPartitions
	substitute.UpstreamUnavailable = true

	out.AggregatedResult = substitute
	out.Degraded = true
	return out, nil
}

// @Summary		Most recent notices
// @Description	Aggregates notices published in the last days across several modalities, removes duplicates and orders them by inclusion, publication and update date.
// @Tags			Notices
// @Produce		json
// @Param			days		query		int						false	"Days to look back"							default(3)
// @Param			modality	query		string					false	"Comma-separated modality codes"
// @Param			limit		query		int						false	"Maximum records returned"					default(50)
// @Param			pageSize	query		int						false	"Upstream page size"						default(50)
// @Param			state		query		string					false	"Two-letter state code"
// @Param			term		query		string					false	"Case and accent insensitive search term"
// @Param			minValue	query		number					false	"Minimum estimated value"
// @Param			maxValue	query		number					false	"Maximum estimated value"
// @Success		200			{object}	response.RecentResponse	"Ranked notices"
// @Failure		400			{object}	response.ErrorResponse	"Invalid parameters"
// @Failure		504			{object}	response.ErrorResponse	"Request timed out"
// @Router			/recent [get]
func (app *application) handleGetRecent(w http.ResponseWriter, r *http.Request) {
	data, err := app.recent(r.Context(), r)
	if err != nil {
		app.writePipelineError(w, r, err)
		return
	}

	w.Header().Set(aggregationIDHeader, data.ID)
	if err := writeJSON(w, http.StatusOK, data); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Export most recent notices
// @Description	Same aggregation as /recent rendered as CSV.
// @Tags			Notices
// @Produce		text/csv
// @Param			encoding	query		string					false	"utf-8 or windows-1252"	default(utf-8)
// @Success		200			{file}		file					"CSV file"
// @Failure		400			{object}	response.ErrorResponse	"Invalid parameters"
// @Router			/recent/export [get]
func (app *application) handleExportRecent(w http.ResponseWriter, r *http.Request) {
	enc, err := export.ParseEncoding(r.URL.Query().Get("encoding"))
	if err != nil {
		app.writePipelineError(w, r, &pncp.ValidationError{Field: "encoding", Message: err.Error()})
		return
	}

	data, err := app.recent(r.Context(), r)
	if err != nil {
		app.writePipelineError(w, r, err)
		return
	}

	w.Header().Set(aggregationIDHeader, data.ID)
	w.Header().Set("Content-Type", fmt.Sprintf("text/csv; charset=%s", enc))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"pncp-recent-%s.csv\"", data.Window.To))
	w.WriteHeader(http.StatusOK)

	if err := export.WriteCSV(w, data.Records, enc); err != nil {
		app.logger.Error("ExportHandler", "Failed to write CSV: run=%s error=%v", data.ID, err)
	}
}
