package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/example/varsha-shop/internal/apperror"
)

const maxBodyBytes = 1 << 20

var (
	errInvalidBody  = apperror.Validation("Invalid JSON body")
	errBodyTooLarge = apperror.Validation("Request body too large")
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondError renders err with the status of its kind. Errors without a
// kind are logged and hidden behind a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", r.Method, r.URL.Path, err)
		respondJSONError(w, "Internal server error", status)
		return
	}
	if status == http.StatusBadGateway {
		log.Printf("[API] %s %s upstream failure: %v", r.Method, r.URL.Path, err)
	}
	respondJSONError(w, apperror.Message(err), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation),
		errors.Is(err, apperror.ErrUnsupported),
		errors.Is(err, apperror.ErrVerification):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrExternal):
		return http.StatusBadGateway
	case errors.Is(err, apperror.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads one JSON value from a body capped at 1 MiB. An empty
// body decodes as the zero value. Validation errors raised by custom
// unmarshalers pass through; anything else becomes errInvalidBody.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return errBodyTooLarge
	case err == nil, errors.Is(err, io.EOF):
		return nil
	case errors.Is(err, apperror.ErrValidation):
		return err
	default:
		return errInvalidBody
	}
}
