package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/blueblud7/dailyYoutubeSummary/internal/models"
)

// contextWithTimeout builds a fresh background context for work that must
// outlive the HTTP request that triggered it.
func contextWithTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

// handleServiceError maps the shared error taxonomy onto HTTP statuses.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Resource not found", r))
	case errors.Is(err, models.ErrQuotaExceeded):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("QUOTA_EXCEEDED", "YouTube API quota exhausted", r))
	case errors.Is(err, models.ErrRateLimited):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("RATE_LIMITED", "Scoring backend is rate limited", r))
	case errors.Is(err, models.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STORE_UNAVAILABLE", "Database is unavailable", r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL", "Internal server error", r))
	}
}
