package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrRoundLocked           = errors.New("round locked")
	ErrIncompletePicks       = errors.New("incomplete picks")
	ErrAlreadyMember         = errors.New("already a member")
)
