package api

import (
	"errors"
	"net/http"

	"speechcraft/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var validation *domain.ValidationError
	var unauthorized *domain.UnauthorizedError
	var accessDenied *domain.AccessDeniedError
	var notFound *domain.NotFoundError
	var conflict *domain.ConflictError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &accessDenied):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError writes a failure envelope for a service error. Internal
// errors are not echoed to the client.
func respondDomainError(w http.ResponseWriter, err error, message string) {
	status := httpStatusFromDomainError(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "internal server error"
	}
	respondError(w, status, message, detail)
}
