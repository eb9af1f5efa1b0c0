// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package api

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/edulens/edulens/internal/logging"
	"github.com/edulens/edulens/internal/models"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes v with goccy/go-json and writes it with the status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps domain errors to HTTP statuses and writes the error
// envelope. Internal errors are logged but not leaked to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrNoData):
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "no data available for this request"})
	case errors.Is(err, models.ErrInvalidInput):
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// decodeJSON parses the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.ErrInvalidInput
	}
	return nil
}
