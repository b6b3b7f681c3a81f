package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
	// ErrClosed indicates a write against a closed fiscal year.
	ErrClosed = errors.New("fiscal_year_closed")
	// ErrDuplicate indicates an account number already in use.
	ErrDuplicate = errors.New("duplicate")
)
