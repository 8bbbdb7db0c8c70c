package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies a client-side failure.
type Code string

const (
	// CodeAuthRequired means a token-requiring call was made without a token.
	CodeAuthRequired Code = "AUTH_REQUIRED"
	// CodeAuthFailed means the backend rejected the presented credentials.
	CodeAuthFailed Code = "AUTH_FAILED"
	CodeForbidden  Code = "FORBIDDEN"
	CodeNotFound   Code = "NOT_FOUND"
	// CodeValidation covers client-side form guards rejected before submission.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeHTTP is any other non-2xx backend response.
	CodeHTTP Code = "HTTP_ERROR"
	// CodePersistence covers local snapshot read/write failures.
	CodePersistence Code = "PERSISTENCE_ERROR"
	// CodeDependency covers transport-level failures reaching the backend.
	CodeDependency Code = "DEPENDENCY_ERROR"
	CodeInternal   Code = "INTERNAL_ERROR"
)

// Error carries a classification code alongside the underlying cause. HTTP
// failures additionally retain the response status and the parsed payload.
type Error struct {
	code    Code
	message string
	status  int
	payload any
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

// NewHTTP builds an error for a non-2xx backend response, keeping the status
// and whatever payload the body parsed into.
func NewHTTP(status int, message string, payload any) *Error {
	return &Error{
		code:    CodeForStatus(status),
		message: message,
		status:  status,
		payload: payload,
	}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Status returns the HTTP status for backend-originated errors, 0 otherwise.
func (e *Error) Status() int {
	if e == nil {
		return 0
	}
	return e.status
}

// Payload returns the parsed response body for backend-originated errors.
func (e *Error) Payload() any {
	if e == nil {
		return nil
	}
	return e.payload
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As unwraps err into a typed *Error when possible.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

// CodeForStatus maps a backend HTTP status to a domain code.
func CodeForStatus(status int) Code {
	switch status {
	case http.StatusUnauthorized:
		return CodeAuthFailed
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidation
	default:
		return CodeHTTP
	}
}

// Retryable reports whether the failure is worth retrying without user
// intervention. Only transport-level failures qualify.
func Retryable(err error) bool {
	typed := As(err)
	if typed == nil {
		return false
	}
	if typed.code == CodeDependency {
		return true
	}
	return typed.status >= 500
}
