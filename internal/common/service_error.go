package common

import (
	"errors"
	"net/http"
)

// Kind classifies a ServiceError.
type Kind int

const (
	KindInternal Kind = iota
	KindConflict
	KindUnauthorized
	KindNotFound
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not found"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return "internal"
	}
}

// StatusCode returns the HTTP status matching the kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ServiceError is the classified failure returned by the auth service.
//
// Message is safe to show to callers. Err keeps the underlying cause for
// logging and errors.Is/As; it is never part of Error().
type ServiceError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of the error kind.
func (e *ServiceError) StatusCode() int {
	return e.Kind.StatusCode()
}

func NewConflict(msg string, cause error) *ServiceError {
	return &ServiceError{Kind: KindConflict, Message: msg, Err: cause}
}

func NewUnauthorized(msg string, cause error) *ServiceError {
	return &ServiceError{Kind: KindUnauthorized, Message: msg, Err: cause}
}

func NewNotFound(msg string, cause error) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Message: msg, Err: cause}
}

func NewInvalidArgument(msg string, cause error) *ServiceError {
	return &ServiceError{Kind: KindInvalidArgument, Message: msg, Err: cause}
}

func NewInternal(msg string, cause error) *ServiceError {
	return &ServiceError{Kind: KindInternal, Message: msg, Err: cause}
}

// AsServiceError extracts a *ServiceError from err. Anything else is wrapped
// as an internal error with a generic message.
func AsServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return NewInternal("Internal Server Error", err)
}
