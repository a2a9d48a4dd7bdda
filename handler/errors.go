package handler

import (
	"errors"
	"net/http"
)

// ErrNilResponse indicates a handler returned nil instead of a Response.
var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error with a status, a stable machine readable code and a
// message safe to show to clients.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details map[string][]string
}

func (e HTTPError) Error() string { return e.Code + ": " + e.Message }

// NewHTTPError creates an HTTPError.
func NewHTTPError(status int, code, message string) HTTPError {
	return HTTPError{Status: status, Code: code, Message: message}
}

var (
	ErrBadRequest          = NewHTTPError(http.StatusBadRequest, "bad_request", "Bad request")
	ErrNotFound            = NewHTTPError(http.StatusNotFound, "not_found", "Not found")
	ErrInternalServerError = NewHTTPError(http.StatusInternalServerError, "internal_error", "Internal server error")
)

// AsHTTPError returns the HTTPError in err's chain, or ErrInternalServerError.
func AsHTTPError(err error) HTTPError {
	var e HTTPError
	if errors.As(err, &e) {
		return e
	}
	return ErrInternalServerError
}
