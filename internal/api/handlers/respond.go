package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/awakenedyouth/awakened-be/internal/services"
	"github.com/rs/zerolog/log"
)

// statusFor maps a service error kind to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrDuplicateEmail), errors.Is(err, services.ErrAlreadySubscribed):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrAccountInactive), errors.Is(err, services.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrExpiredToken):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and answers with the status its kind maps to.
func writeError(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg(msg)
		http.Error(w, msg, status)
		return
	}
	log.Debug().Err(err).Int("status", status).Msg(msg)
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
