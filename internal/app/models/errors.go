package models

import "errors"

// Domain specific errors for authentication and authorization.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrNoCredential    = errors.New("no persisted credential")
	ErrUpstream        = errors.New("platform request failed")
)
