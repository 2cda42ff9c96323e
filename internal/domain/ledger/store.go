package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Store is the durable backing for point accounts and their entries.
//
// Apply is the single mutation choke point: it must serialize concurrent calls
// for the same account (row lock or equivalent), reject debits that would
// drive the balance negative, and commit the balance update together with
// exactly one new entry as an atomic unit. Any failure leaves both untouched.
//
// The Postgres implementation lives in Repository; MemStore provides the same
// contract in memory for tests.
type Store interface {
	// EnsureAccount creates the account with balance 0 if it does not exist.
	EnsureAccount(ctx context.Context, userID uuid.UUID) error

	// Balance returns the current balance, ErrAccountNotFound if absent.
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)

	// Entries returns the account's entries newest-first.
	Entries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, error)

	// CountEntries returns the total number of entries for the account.
	CountEntries(ctx context.Context, userID uuid.UUID) (int, error)

	// Apply atomically adds amount to the balance and appends one entry,
	// returning the new balance. A non-empty referenceID makes the call
	// idempotent: a retry with the same kind/reference/amount is a no-op,
	// a retry with a different amount fails with ErrReferenceConflict.
	Apply(ctx context.Context, userID uuid.UUID, kind EntryKind, amount int64, description, referenceID string) (int64, error)
}
