package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	apperrors "tokenbook/internal/errors"
	"tokenbook/internal/httpx"
)

// failure is the envelope for application-level failures.
type failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// logf prefixes the line with the request id.
func logf(r *http.Request, format string, args ...interface{}) {
	log.Printf("[%s] "+format, append([]interface{}{httpx.RequestIDFromContext(r.Context())}, args...)...)
}

// writeFailure reports err as {success:false, message}. Errors that do not
// carry an HTTP status are logged and hidden behind a generic message.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *apperrors.HTTPError
	if errors.As(err, &httpErr) {
		writeJSON(w, httpErr.Code, failure{Message: httpErr.Message})
		return
	}
	logf(r, "Internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, failure{Message: "Something went wrong. Please try again."})
}

// writeError is the plain-text variant for endpoints whose success body has no message field.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *apperrors.HTTPError
	if errors.As(err, &httpErr) {
		http.Error(w, httpErr.Message, httpErr.Code)
		return
	}
	logf(r, "Internal error: %v", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
