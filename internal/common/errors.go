// Package common defines sentinel errors and constants shared by the server
// layers of doccoon. Callers should match these values with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Not-found errors naming the missing resource. They match ErrorNotFound.
	ErrBookNotFound = fmt.Errorf("book %w", ErrorNotFound)
	ErrPageNotFound = fmt.Errorf("page %w", ErrorNotFound)

	// Sharing errors.
	ErrNoActiveShare    = errors.New("no active share found")
	ErrBookNotPublished = errors.New("only published books can be shared")

	// AI errors.
	ErrNoAPIKey = errors.New("no active API key found, add an API key in Settings > AI Configuration")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
