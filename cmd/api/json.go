package main

import (
	"encoding/json"
	"net/http"

	"github.com/farxc/pncp_wrapper/internal/response"
)

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, &response.ErrorResponse{Error: message})
}

func writeJSONErrorDetail(w http.ResponseWriter, status int, message, detail string) error {
	return writeJSON(w, status, &response.ErrorResponse{Error: message, Detail: detail})
}
