package service

import "errors"

// Domain error kinds. Handlers translate these to HTTP statuses with
// errors.Is; services wrap them with %w to attach detail.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrSelfSubscription   = errors.New("cannot subscribe to yourself")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
