// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., account identity taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates a malformed email or request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable indicates an ephemeral or durable store call failed or timed out.
	// It is retryable by the caller.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrMissingEmail indicates a password registration without an email.
	ErrMissingEmail = errors.New("missing email")

	// ErrProfileIncomplete indicates a provider profile (or durable profile) lacks required data.
	ErrProfileIncomplete = errors.New("profile incomplete")

	// ErrUnauthorized indicates a failed external proof (bad grant, bad credentials).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary throttling of acquisition attempts.
	ErrRateLimited = errors.New("rate limited")
)
