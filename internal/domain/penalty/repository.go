package penalty

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the penalty and, for ban severity, flags the user in the
// same transaction so the record and the access change cannot diverge.
func (r *Repository) Create(ctx context.Context, p *Penalty) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("penalty repository begin: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO penalties (id, user_id, reason, severity, applied_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = tx.ExecContext(ctx, query,
		p.ID, p.UserID, p.Reason, p.Severity, p.AppliedBy, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("penalty repository create: %w", err)
	}

	if p.Severity == SeverityBan {
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET is_banned = true, updated_at = NOW() WHERE id = $1`, p.UserID)
		if err != nil {
			return fmt.Errorf("penalty repository ban user: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("penalty repository commit: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Penalty, error) {
	var p Penalty
	query := `SELECT id, user_id, reason, severity, applied_by, created_at
		FROM penalties WHERE id = $1`

	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPenaltyNotFound
		}
		return nil, fmt.Errorf("penalty repository get: %w", err)
	}
	return &p, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Penalty, error) {
	var penalties []*Penalty
	query := `SELECT id, user_id, reason, severity, applied_by, created_at
		FROM penalties WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &penalties, query, userID)
	if err != nil {
		return nil, fmt.Errorf("penalty repository list: %w", err)
	}
	return penalties, nil
}

// Delete revokes a penalty. When the revoked penalty was a ban and no other
// ban remains for the user, the flag is cleared in the same transaction.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("penalty repository begin: %w", err)
	}
	defer tx.Rollback()

	var p Penalty
	err = tx.GetContext(ctx, &p,
		`DELETE FROM penalties WHERE id = $1 RETURNING id, user_id, reason, severity, applied_by, created_at`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPenaltyNotFound
		}
		return fmt.Errorf("penalty repository delete: %w", err)
	}

	if p.Severity == SeverityBan {
		var remaining int
		err = tx.GetContext(ctx, &remaining,
			`SELECT COUNT(*) FROM penalties WHERE user_id = $1 AND severity = 'ban'`, p.UserID)
		if err != nil {
			return fmt.Errorf("penalty repository count bans: %w", err)
		}
		if remaining == 0 {
			_, err = tx.ExecContext(ctx,
				`UPDATE users SET is_banned = false, updated_at = NOW() WHERE id = $1`, p.UserID)
			if err != nil {
				return fmt.Errorf("penalty repository unban user: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("penalty repository commit: %w", err)
	}
	return nil
}
