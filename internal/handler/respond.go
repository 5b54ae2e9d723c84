// internal/handler/respond.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alexpetro/campaign-notifier/internal/apperrors"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the domain taxonomy onto HTTP statuses. Storage faults are
// flattened to a generic 500; their details stay server-side.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNoCampaignsAvailable):
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: err.Error()})
	case apperrors.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: err.Error()})
	case apperrors.IsConflict(err):
		writeJSON(w, http.StatusConflict, errorResponse{Detail: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "internal server error"})
	}
}
