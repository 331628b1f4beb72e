package domain

import "errors"

// Sentinel errors. Domain errors are pure — no infrastructure dependency.
var (
	// Rules engine errors
	ErrInvalidDuration     = errors.New("session duration must be 25 or 50 minutes")
	ErrTaskNotFound        = errors.New("task not found")
	ErrForbidden           = errors.New("task belongs to a different user")
	ErrAlreadyCompleted    = errors.New("task already completed")
	ErrProfileNotFound     = errors.New("user profile not found")
	ErrPersistenceConflict = errors.New("concurrent profile write detected")

	// Account errors
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// Sync queue errors
	ErrDuplicateSyncEntry = errors.New("sync entry already submitted")
	ErrUnknownSyncKind    = errors.New("unknown sync entry kind")
)
