package ledger

import "errors"

var (
	ErrAccountNotFound     = errors.New("point account not found")
	ErrInsufficientBalance = errors.New("insufficient point balance")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidKind         = errors.New("invalid entry kind")
	ErrDuplicateReference  = errors.New("duplicate reference")
	ErrReferenceConflict   = errors.New("reference conflicts with different amount")
	// ErrConcurrencyConflict signals a transient serialization failure; the
	// whole operation may be retried from scratch, nothing was committed.
	ErrConcurrencyConflict = errors.New("concurrent ledger conflict, retry")
)
