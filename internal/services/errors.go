package services

import "errors"

// Error kinds surfaced to callers. Services wrap them with context; match with errors.Is.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is not active")
	ErrAccessDenied       = errors.New("access denied")
	ErrNotFound           = errors.New("not found")
	ErrInvalidToken       = errors.New("invalid reset token")
	ErrExpiredToken       = errors.New("reset token has expired")
	ErrNotAuthenticated   = errors.New("not logged in")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrAlreadySubscribed  = errors.New("already subscribed")
	ErrInvalidInput       = errors.New("invalid input")
)
