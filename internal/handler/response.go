package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ecoleta/ecoleta-go/internal/middleware"
	"github.com/ecoleta/ecoleta-go/internal/repository"
	"github.com/ecoleta/ecoleta-go/internal/service"
	"github.com/ecoleta/ecoleta-go/internal/validation"
)

const maxBodyBytes = 1 << 20 // 1MB

// Recorder receives domain events for metrics.
type Recorder interface {
	PickupCreated()
	PickupRejected(field string)
	StatusChanged(status string)
	Login(outcome string)
	Renewal(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) PickupCreated() {}
func (nopRecorder) PickupRejected(string) {}
func (nopRecorder) StatusChanged(string) {}
func (nopRecorder) Login(string) {}
func (nopRecorder) Renewal(string) {}

func recorderOrNop(rec Recorder) Recorder {
	if rec == nil {
		return nopRecorder{}
	}
	return rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// decodeJSON reads a size-limited JSON body into v, writing the error
// response itself and returning false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return false
	}
	return true
}

// writeError maps a service error to its HTTP response by kind.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Reason, "field": verr.Field})
	case errors.Is(err, validation.ErrInvalidStatus),
		errors.Is(err, validation.ErrJustificationRequired),
		errors.Is(err, service.ErrCredentialsRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, repository.ErrPickupNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
	case errors.Is(err, service.ErrRenewalFailed):
		status, _, code := middleware.TokenFailure(err)
		if status != http.StatusUnauthorized {
			internalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": service.ErrRenewalFailed.Error(), "code": code})
	default:
		internalError(w, r, err)
	}
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
		"request_id", middleware.RequestIDFromContext(r.Context()),
	)
	writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
}
