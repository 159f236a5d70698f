package apperrors

import "net/http"

// Factories for the booking and notification domains. Services return these
// so handlers can map every failure to a stable code and HTTP status.

// ErrNotFound converts a repository miss into a 404.
func ErrNotFound(err error, domain string) *AppError {
	return Wrap(err, CodeNotFound, domain, "Resource not found", http.StatusNotFound)
}

// ErrInvalidTransition refuses an action that is not legal from the booking's
// current state (including duplicate rating submissions).
func ErrInvalidTransition(domain, message string) *AppError {
	return New(CodeInvalidTransition, domain, message, http.StatusBadRequest)
}

func ErrForbidden(domain, message string) *AppError {
	return New(CodeForbidden, domain, message, http.StatusForbidden)
}

// ErrConflict reports a write that kept losing the optimistic version race
// after retries; the caller may simply try again.
func ErrConflict(domain, message string) *AppError {
	return New(CodeConflict, domain, message, http.StatusConflict)
}
