package penalty

import (
	"time"

	"github.com/google/uuid"
)

// Severity grades a penalty. Only ban changes account access.
type Severity string

const (
	SeverityWarning    Severity = "warning"
	SeveritySuspension Severity = "suspension"
	SeverityBan        Severity = "ban"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityWarning, SeveritySuspension, SeverityBan:
		return true
	}
	return false
}

// Penalty is an admin-applied misuse record (matches penalties table).
// Penalties never write ledger entries.
type Penalty struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Reason    string    `db:"reason" json:"reason"`
	Severity  Severity  `db:"severity" json:"severity"`
	AppliedBy uuid.UUID `db:"applied_by" json:"applied_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
