package main

import (
	"net/http"
	"time"

	"github.com/farxc/pncp_wrapper/internal/response"
)

// @Summary		Health check
// @Description	returns the status of the service
// @Tags			Health
// @Produce		json
// @Success		200	{object}	response.HealthResponse
// @Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {

	data := response.HealthResponse{
		OK:        true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   version,
	}

	if err := writeJSON(w, http.StatusOK, data); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
