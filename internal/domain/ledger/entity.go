package ledger

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind classifies a balance-affecting event (matches point_entry_kind enum).
// Credits carry positive amounts, debits negative ones.
type EntryKind string

const (
	// KindCreditDisposal is the automatic scoring credit for a disposal.
	KindCreditDisposal EntryKind = "credit_disposal"
	// KindCreditAudit is the administrator-chosen credit granted on disposal approval.
	KindCreditAudit EntryKind = "credit_audit"
	// KindDebitRedeem is the debit charged when a reward is redeemed.
	KindDebitRedeem EntryKind = "debit_redeem"
)

// Valid reports whether k is one of the recognized entry kinds
func (k EntryKind) Valid() bool {
	switch k {
	case KindCreditDisposal, KindCreditAudit, KindDebitRedeem:
		return true
	}
	return false
}

// Account is a user's point balance (matches point_accounts table).
// The balance is a cached projection of the entry sum; every mutation goes
// through Store.Apply, paired with exactly one new Entry.
type Account struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Entry is one immutable ledger row (matches point_entries table).
// Entries are append-only; corrections are new offsetting entries, never edits.
type Entry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Kind        EntryKind `db:"kind" json:"kind"`
	Amount      int64     `db:"amount" json:"amount"`
	Description string    `db:"description" json:"description"`
	ReferenceID *string   `db:"reference_id" json:"reference_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
