// Package apierror defines the error taxonomy surfaced to API clients.
// Services return *Error values for expected failures; everything else is
// mapped to a generic internal error at the route boundary so downstream
// detail never reaches the client.
package apierror

import (
	"errors"
	"net/http"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string { return e.Message }

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func Validation(message string) *Error {
	return New("validation_error", http.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New("unauthorized", http.StatusUnauthorized, message)
}

func PaymentRequired(message string) *Error {
	return New("payment_required", http.StatusPaymentRequired, message)
}

func Forbidden(message string) *Error {
	return New("forbidden", http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New("not_found", http.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return New("conflict", http.StatusConflict, message)
}

func PayloadTooLarge(message string) *Error {
	return New("payload_too_large", http.StatusRequestEntityTooLarge, message)
}

func UnsupportedMedia(message string) *Error {
	return New("unsupported_media_type", http.StatusUnsupportedMediaType, message)
}

func Internal(message string) *Error {
	return New("internal_error", http.StatusInternalServerError, message)
}

// From maps any error to a client-safe *Error. Unknown errors become a
// generic internal error; their detail belongs in logs, not responses.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("internal server error")
}
