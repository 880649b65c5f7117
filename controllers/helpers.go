package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"roomly_server/services"
)

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps a service error onto its HTTP status and sends a JSON
// error body.
func writeError(w http.ResponseWriter, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, services.ErrInvalidState):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	default:
		log.Printf("❌ %s: %v", fallback, err)
	}

	writeJSON(w, status, map[string]string{"error": message})
}

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// WelcomeHandler provides a welcome message
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Roomly API."})
}
