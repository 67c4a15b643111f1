package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventmanagement/internal/domain"
)

// WriteServiceError maps a service error to its HTTP status by kind. Errors of
// unknown kind are logged and answered with a generic 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := http.StatusInternalServerError, ErrCodeInternalError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, domain.ErrConflict):
		status, code = http.StatusConflict, ErrCodeConflict
	case errors.Is(err, domain.ErrForbidden):
		status, code = http.StatusForbidden, ErrCodeForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = http.StatusUnauthorized, ErrCodeUnauthorized
	}
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, status, code, "internal server error")
		return
	}
	WriteJSONError(w, status, code, reason(err))
}

// reason returns the domain reason without the wrapping added on the way up.
func reason(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return err.Error()
}
