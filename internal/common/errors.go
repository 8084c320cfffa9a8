// Package common defines shared constants and sentinel errors used across
// the auth service and its client. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Token errors. ErrTokenMalformed covers bad encoding and bad signatures.
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")

	// ErrPasswordTooLong is returned by hashers with an input size limit.
	ErrPasswordTooLong = errors.New("password too long")
)
