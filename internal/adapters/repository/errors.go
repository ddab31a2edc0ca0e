package repository

import "errors"

// Sentinel kinds for history store errors.
var (
	ErrNotFound       = errors.New("account not found")
	ErrInvalidAccount = errors.New("invalid account name")
)
