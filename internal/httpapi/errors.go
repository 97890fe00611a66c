package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"negotiatord/internal/apperr"
)

// errorBody is the JSON shape returned for every error response.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// statusFor maps an apperr.Kind to its HTTP status code.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.RateLimited:
		return http.StatusTooManyRequests
	case apperr.PayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperr.Degraded:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError renders err as a JSON error response. Unrecognised error
// kinds are logged with full detail and returned as an opaque 500, never
// leaking internal error text to the client.
func writeAppError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		writeError(w, statusFor(appErr.Kind), appErr.Msg)
		return
	}
	logger.Error("unexpected error", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
