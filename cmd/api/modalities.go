package main

import (
	"net/http"

	"github.com/farxc/pncp_wrapper/internal/pncp/catalogue"
	"github.com/farxc/pncp_wrapper/internal/response"
)

type GetModalitiesResponse = response.APIResponse[[]catalogue.Modality]

// @Summary		List modalities
// @Description	Procurement modality codes accepted by the modality parameters.
// @Tags			Modalities
// @Produce		json
// @Success		200	{object}	GetModalitiesResponse	"Modality catalogue"
// @Router			/modalities [get]
func (app *application) handleGetModalities(w http.ResponseWriter, r *http.Request) {
	data := &GetModalitiesResponse{
		Success: true,
		Message: "Successfully retrieved modality catalogue",
		Data:    app.service.Catalogue().All(),
	}

	if err := writeJSON(w, http.StatusOK, data); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
