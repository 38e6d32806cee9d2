package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/sabbirhsn/blood-aid/donation-service/internal/core/domain"
)

// messageResponse is the uniform success/error envelope.
type messageResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func respondMessage(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, messageResponse{Message: message, Data: data})
}

// respondError maps the domain error taxonomy onto HTTP statuses. Unknown
// errors are logged and surfaced as a fixed 500 message so internals never
// leak to the caller.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, messageResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrNotPending),
		errors.Is(err, domain.ErrNotInProgress):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal server error"})
	}
}
