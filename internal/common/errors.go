// Package common defines shared constants and sentinel errors used across
// the authkeeper layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorAccountLocked covers both the failed-attempt ceiling and an
	// account that has not completed verification. Handlers must not
	// distinguish the two cases for the caller.
	ErrorAccountLocked = errors.New("account locked")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrMissingSecretKey is fatal at startup: tokens cannot be signed
	// without a configured secret.
	ErrMissingSecretKey = errors.New("signing secret key is not configured")
)
