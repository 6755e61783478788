// Package respond writes JSON responses and maps ledger errors to HTTP
// status codes.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Sanket3107/Rupaya/internal/apperr"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// Status maps an error kind to its HTTP status.
func Status(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// Error writes err as an ErrorBody. Internal errors are logged and their
// message is not sent to the client.
func Error(w http.ResponseWriter, err error) {
	status := Status(err)
	body := ErrorBody{Error: err.Error(), Kind: apperr.KindOf(err).String()}
	if status == http.StatusInternalServerError {
		slog.Error("Internal error", "error", err)
		body.Error = "internal server error"
	}
	JSON(w, status, body)
}
