package httpapi

import (
	"errors"
	"net/http"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/store"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	writeJSON(w, status, e)
}

// writeStoreError maps the store/domain error taxonomy onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "not_found", "Job not found")
	case errors.Is(err, store.ErrNotOwner):
		WriteError(w, r, http.StatusForbidden, "not_owner", "Only the creator can do that")
	case errors.Is(err, store.ErrAlreadyApplied):
		WriteError(w, r, http.StatusConflict, "already_applied", "You have already applied for this job")
	case errors.Is(err, domain.ErrMissingFields), errors.Is(err, domain.ErrJobTypeRequired):
		WriteError(w, r, http.StatusBadRequest, "validation", err.Error())
	default:
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
