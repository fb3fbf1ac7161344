package main

import (
	"context"
	"net/http"

	"github.com/farxc/pncp_wrapper/internal/pncp"
	"github.com/farxc/pncp_wrapper/internal/pncp/types"
	"github.com/farxc/pncp_wrapper/internal/response"
)

// pageResponse wraps a strict single-partition result. When the walk failed
// upstream and degraded mode is on, fallback notices are served instead.
func (app *application) pageResponse(ctx context.Context, kind string, pageSize int, res *types.PageResult, err error) (*response.PageResponse, error) {
	const component = "NoticesHandler"

	if err == nil {
		return &response.PageResponse{Pagination: res.Pagination, Records: res.Records}, nil
	}
	if app.fallback == nil || !isUpstreamFailure(err) {
		return nil, err
	}

	records, fbErr := app.fallback.Records(ctx)
	if fbErr != nil {
		return nil, err
	}
	app.logger.Warn(component, "Serving fallback notices: kind=%s reason=%q records=%d", kind, err.Error(), len(records))

	return &response.PageResponse{
		Pagination: types.Pagination{CurrentPage: 1, TotalPages: 1, TotalCount: len(records), PageSize: pageSize},
		Degraded:   true,
		Records:    records,
	}, nil
}

// @Summary		Notices open for proposals
// @Description	Lists notices of one modality still receiving proposals as of the cutoff date. With allPages every page is fetched and any page failure fails the request.
// @Tags			Notices
// @Produce		json
// @Param			modality	query		int						false	"Modality code"						default(6)
// @Param			cutoffDate	query		string					false	"Cutoff date (YYYYMMDD)"			default(today)
// @Param			page		query		int						false	"Page number"						default(1)
// @Param			pageSize	query		int						false	"Upstream page size"				default(50)
// @Param			allPages	query		bool					false	"Fetch every page when page is 1"	default(true)
// @Param			state		query		string					false	"Two-letter state code"
// @Success		200			{object}	response.PageResponse	"Notices"
// @Failure		400			{object}	response.ErrorResponse	"Invalid parameters"
// @Failure		502			{object}	response.ErrorResponse	"Upstream request failed"
// @Router			/open-for-proposals [get]
func (app *application) handleGetOpenForProposals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := newQueryParams(r.URL.Query())
	q := app.service.NewOpenQuery()
	params.openQuery(&q)
	if params.err != nil {
		app.writePipelineError(w, r, params.err)
		return
	}

	res, err := app.service.OpenForProposals(ctx, q)
	data, err := app.pageResponse(ctx, pncp.KindOpenForProposals, app.service.PageSize(q.PageSize), res, err)
	if err != nil {
		app.writePipelineError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, data); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Notices published in a window
// @Description	Lists notices of one modality published between startDate and endDate. With allPages every page is fetched and any page failure fails the request.
// @Tags			Notices
// @Produce		json
// @Param			modality	query		int						true	"Modality code"
// @Param			startDate	query		string					true	"Start date (YYYYMMDD)"
// @Param			endDate		query		string					true	"End date (YYYYMMDD)"
// @Param			page		query		int						false	"Page number"						default(1)
// @Param			pageSize	query		int						false	"Upstream page size"				default(50)
// @Param			allPages	query		bool					false	"Fetch every page when page is 1"	default(true)
// @Param			state		query		string					false	"Two-letter state code"
// @Success		200			{object}	response.PageResponse	"Notices"
// @Failure		400			{object}	response.ErrorResponse	"Invalid parameters"
// @Failure		502			{object}	response.ErrorResponse	"Upstream request failed"
// @Router			/published [get]
func (app *application) handleGetPublished(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := newQueryParams(r.URL.Query())
	q := app.service.NewPublishedQuery()
	params.publishedQuery(&q)
	if params.err != nil {
		app.writePipelineError(w, r, params.err)
		return
	}

	res, err := app.service.Published(ctx, q)
	data, err := app.pageResponse(ctx, pncp.KindPublished, app.service.PageSize(q.PageSize), res, err)
	if err != nil {
		app.writePipelineError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, data); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
