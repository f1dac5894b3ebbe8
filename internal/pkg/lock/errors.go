package lock

import "errors"

// Lock-related errors.
var (
	// ErrAlreadyLocked is returned when the key is held by another owner.
	ErrAlreadyLocked = errors.New("lock already held")

	// ErrNotHeld is returned when releasing a lock the caller does not own.
	ErrNotHeld = errors.New("lock not held by this token")
)
