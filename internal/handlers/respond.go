package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps domain errors to HTTP status codes. Validation and
// workflow guard failures are client errors, missing records are 404,
// lost races are 409, anything untyped is a 500.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	kind, ok := apperrors.KindOf(err)
	if !ok {
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	status := http.StatusBadRequest
	switch kind {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindConflict:
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
