package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")

	// Registration errors
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrWeakPassword      = errors.New("password does not meet requirements")

	// Authentication errors. ErrInvalidCredentials covers both unknown
	// account and wrong password so callers cannot enumerate users.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many failed attempts")

	// Authorization errors. ErrInvalidToken covers malformed, expired,
	// over-age, revoked, and badly signed tokens alike.
	ErrInvalidToken    = errors.New("invalid token")
	ErrAccountInactive = errors.New("account is deactivated")
)
