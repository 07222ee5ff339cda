// Package handlers implements the HTTP handlers for the TrackStore REST API.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/trackstore/trackstore/internal/errors"
)

// errorBody is the JSON body of every error response.
type errorBody struct {
	ErrorMessage string            `json:"errorMessage"`
	ErrorCode    string            `json:"errorCode"`
	Details      map[string]string `json:"details,omitempty"`
}

// idBody is the JSON body returned by create operations.
type idBody struct {
	ID int64 `json:"id"`
}

// idsBody is the JSON body returned by batch delete operations.
type idsBody struct {
	IDs []int64 `json:"ids"`
}

// writeJSON serializes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writing response body failed", "error", err)
	}
}

// writeError maps a classified error onto its HTTP status and JSON body.
// Errors without a classification are reported as unavailable so callers
// never see an unclassified failure.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if !apperrors.As(err, &appErr) {
		appErr = apperrors.Unavailable(err, "internal failure")
	}
	writeJSON(w, appErr.HTTPStatus, errorBody{
		ErrorMessage: appErr.Message,
		ErrorCode:    appErr.Code,
		Details:      appErr.Details,
	})
}

// pathID parses the {id} path parameter as a positive integer.
func pathID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("invalid ID %q: must be a positive integer", raw).
			WithDetail("id", "must be a positive integer")
	}
	return id, nil
}
