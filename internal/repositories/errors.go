package repositories

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
	// ErrStaleToken indicates a conditional refresh-token swap lost the race:
	// the stored token no longer matched the expected value.
	ErrStaleToken = errors.New("stale refresh token")
)
