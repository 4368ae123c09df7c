package handlers

import (
	"errors"
	"net/http"

	"github.com/julee/knowledge-service/internal/application"
	"github.com/julee/knowledge-service/internal/domain/repository"
	"github.com/julee/knowledge-service/pkg/response"
)

// mapError translates the application error taxonomy into an HTTP status,
// a stable error code and a client-safe message. Storage detail stays inside;
// only the taxonomy crosses the boundary.
func mapError(err error) (status int, code, message string, details interface{}) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, response.CodeValidationFailed, "invalid input", verr.Fields
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, response.CodeNotFound, "not found", nil
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, response.CodeConflict, "already exists", nil
	case errors.Is(err, repository.ErrUnavailable):
		return http.StatusServiceUnavailable, response.CodeUnavailable, "service unavailable, retry later", nil
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized, response.CodeUnauthorized, "invalid credentials", nil
	default:
		return http.StatusInternalServerError, response.CodeInternal, "internal error", nil
	}
}
