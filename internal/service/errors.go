package service

import "errors"

var (
	// ErrInvalidResult is a client input error; nothing was written.
	ErrInvalidResult = errors.New("invalid match result")
	// ErrDuplicateMatch means the match id has already been recorded.
	ErrDuplicateMatch = errors.New("match already recorded")
	ErrMissingUID     = errors.New("uid is required")
)
