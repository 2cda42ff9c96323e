package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository is the PostgreSQL Store. Serialization per account relies on a
// row-level lock on point_accounts (SELECT ... FOR UPDATE); accounts lock
// independently, so operations on different accounts never block each other.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new ledger repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) EnsureAccount(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO point_accounts (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return fmt.Errorf("ledger repository ensure account: %w", err)
	}
	return nil
}

func (r *Repository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM point_accounts WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("ledger repository balance: %w", err)
	}
	return balance, nil
}

func (r *Repository) Entries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, error) {
	query := `
		SELECT id, user_id, kind, amount, description, reference_id, created_at
		FROM point_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	var entries []*Entry
	if err := r.db.SelectContext(ctx, &entries, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("ledger repository entries: %w", err)
	}
	return entries, nil
}

func (r *Repository) CountEntries(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM point_entries WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("ledger repository count entries: %w", err)
	}
	return count, nil
}

// Apply runs the whole lock/check/write sequence in its own transaction.
func (r *Repository) Apply(ctx context.Context, userID uuid.UUID, kind EntryKind, amount int64, description, referenceID string) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return 0, fmt.Errorf("ledger repository begin: %w", err)
	}
	defer tx.Rollback()

	newBalance, err := r.ApplyTx(ctx, tx, userID, kind, amount, description, referenceID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, mapPQError(err)
	}
	return newBalance, nil
}

// ApplyTx applies a ledger mutation inside an external transaction. Used when
// the credit or debit must commit atomically with another write, e.g. the
// disposal approval status change or the redemption row.
func (r *Repository) ApplyTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, kind EntryKind, amount int64, description, referenceID string) (int64, error) {
	balance, err := r.lockAccount(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	existingAmount, exists, err := r.entryAmountByRef(ctx, tx, userID, kind, referenceID)
	if err != nil {
		return 0, err
	}
	if exists {
		if existingAmount != amount {
			return 0, ErrReferenceConflict
		}
		// Idempotent retry: already applied.
		return balance, nil
	}

	nextBalance := balance + amount
	if nextBalance < 0 {
		return 0, ErrInsufficientBalance
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE point_accounts SET balance = $1, updated_at = now() WHERE user_id = $2`,
		nextBalance, userID,
	); err != nil {
		return 0, mapPQError(err)
	}

	if err := r.insertEntry(ctx, tx, userID, kind, amount, description, referenceID); err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			// Lost a race on the reference index: verify the winner wrote the same amount.
			existingAmount, exists, checkErr := r.entryAmountByRef(ctx, tx, userID, kind, referenceID)
			if checkErr != nil {
				return 0, checkErr
			}
			if !exists || existingAmount != amount {
				return 0, ErrReferenceConflict
			}
			return balance, nil
		}
		return 0, err
	}

	return nextBalance, nil
}

func (r *Repository) lockAccount(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (int64, error) {
	var balance int64
	err := tx.GetContext(ctx, &balance,
		`SELECT balance FROM point_accounts WHERE user_id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	if err != nil {
		return 0, mapPQError(err)
	}
	return balance, nil
}

func (r *Repository) entryAmountByRef(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, kind EntryKind, referenceID string) (int64, bool, error) {
	if referenceID == "" {
		return 0, false, nil
	}

	var amount int64
	err := tx.GetContext(ctx, &amount, `
		SELECT amount
		FROM point_entries
		WHERE user_id = $1 AND kind = $2 AND reference_id = $3
		LIMIT 1
	`, userID, string(kind), referenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, mapPQError(err)
	}
	return amount, true, nil
}

func (r *Repository) insertEntry(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, kind EntryKind, amount int64, description, referenceID string) error {
	var ref interface{}
	if referenceID != "" {
		ref = referenceID
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO point_entries (id, user_id, kind, amount, description, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.New(), userID, string(kind), amount, description, ref, time.Now())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return mapPQError(err)
	}
	return nil
}

// mapPQError folds transient serialization failures into ErrConcurrencyConflict
// so callers can retry the whole operation.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return ErrConcurrencyConflict
		}
	}
	return fmt.Errorf("ledger repository: %w", err)
}
