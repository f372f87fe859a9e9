// Package common defines shared constants and sentinel errors used across
// the Taiglo client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Input validation errors raised by the CLI before any request is made.
	ErrInvalidID         = errors.New("invalid id")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrPasswordTooShort  = errors.New("password must be at least 6 characters")
	ErrInvalidCoordinate = errors.New("invalid coordinates")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrInvalidSort       = errors.New("invalid sort")
	ErrRequiredField     = errors.New("required field is empty")
	ErrInvalidPrice      = errors.New("price range must be between 1 and 4")

	// ErrNotAdmin is returned by admin-only commands for non-admin identities.
	ErrNotAdmin = errors.New("admin role required")
)
