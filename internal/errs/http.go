package errs

import (
	"net/http"
)

// newHTTPError builds an error whose code defaults to the status text in
// upper snake case ("Not Found" -> "NOT_FOUND").
func newHTTPError(status int, message string, override bool, code *string) *HTTPError {
	c := MakeUpperCaseWithUnderscores(http.StatusText(status))
	if code != nil {
		c = *code
	}
	return &HTTPError{
		Code:     c,
		Message:  message,
		Status:   status,
		Override: override,
	}
}

func NewUnauthorizedError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, message, override, nil)
}

func NewForbiddenError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusForbidden, message, override, nil)
}

// NewBadRequestError creates a 400. A nil code means "BAD_REQUEST".
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	e := newHTTPError(http.StatusBadRequest, message, override, code)
	e.Errors = errors
	e.Action = action
	return e
}

func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message, override, code)
}

// NewConflictError reports a write that collides with existing state, such
// as a taken username.
func NewConflictError(message string, override bool, code *string) *HTTPError {
	return newHTTPError(http.StatusConflict, message, override, code)
}

func NewTooManyRequestsError(message string) *HTTPError {
	return newHTTPError(http.StatusTooManyRequests, message, true, nil)
}

// NewInternalServerError hides the cause; callers log it.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false, nil)
}

// Code returns a pointer to code, for the optional code arguments above.
func Code(code string) *string {
	return &code
}
