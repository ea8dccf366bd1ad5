package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"divvy/internal/core"
)

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps a ledger error to an HTTP status and a stable reason code.
// Validation failures are 422, a taken title is 409, a missing group or
// expense index is 404, anything else is 500.
func writeError(w http.ResponseWriter, err error) {
	status, reason := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Reason: reason})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrEmptyTitle):
		return http.StatusUnprocessableEntity, "empty_title"
	case errors.Is(err, core.ErrNoMembers):
		return http.StatusUnprocessableEntity, "no_members"
	case errors.Is(err, core.ErrTooManyMembers):
		return http.StatusUnprocessableEntity, "too_many_members"
	case errors.Is(err, core.ErrNonPositiveAmount):
		return http.StatusUnprocessableEntity, "non_positive_amount"
	case errors.Is(err, core.ErrEmptySplit):
		return http.StatusUnprocessableEntity, "empty_split"
	case errors.Is(err, core.ErrPayerNotInGroup):
		return http.StatusUnprocessableEntity, "payer_not_in_group"
	case errors.Is(err, core.ErrDuplicateTitle):
		return http.StatusConflict, "duplicate_title"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, core.ErrIndexOutOfRange):
		return http.StatusNotFound, "index_out_of_range"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

// randomDisplayColor picks a hex color for a new group. The core stores the
// value opaquely; only this layer ever interprets it.
func randomDisplayColor() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "#4a90d9"
	}
	return "#" + hex.EncodeToString(b)
}
