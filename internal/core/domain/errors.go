package domain

import "errors"

var (
	ErrAccessDenied      = errors.New("access denied")
	ErrBikeNotAvailable  = errors.New("bike is not available")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrBadCredentials    = errors.New("invalid email or password")
	ErrTokenRevoked      = errors.New("token revoked")
)
