package disposal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/recicla/recicla-api/internal/domain/ledger"
)

type Repository struct {
	db     *sqlx.DB
	ledger *ledger.Repository
}

func NewRepository(db *sqlx.DB, ledgerRepo *ledger.Repository) *Repository {
	return &Repository{db: db, ledger: ledgerRepo}
}

const disposalColumns = `id, user_id, bin_id, waste_type, volume_liters, evidence_key,
	estimated_points, awarded_points, status, reviewed_by, review_note, created_at, reviewed_at`

// Create inserts a pending disposal awaiting administrator review
func (r *Repository) Create(ctx context.Context, d *Disposal) error {
	query := `
		INSERT INTO disposals (id, user_id, bin_id, waste_type, volume_liters, evidence_key, estimated_points, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.UserID, d.BinID, d.WasteType, d.VolumeLiters,
		d.EvidenceKey, d.EstimatedPoints, d.Status, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("disposal repository create: %w", err)
	}
	return nil
}

// CreateApproved inserts an already-approved disposal and credits the
// estimated points in the same transaction. Used for auto-credit bins:
// either both the row and the ledger entry commit, or neither does.
func (r *Repository) CreateApproved(ctx context.Context, d *Disposal) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return 0, fmt.Errorf("disposal repository begin: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO disposals (id, user_id, bin_id, waste_type, volume_liters, evidence_key,
			estimated_points, awarded_points, status, created_at, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = tx.ExecContext(ctx, query,
		d.ID, d.UserID, d.BinID, d.WasteType, d.VolumeLiters, d.EvidenceKey,
		d.EstimatedPoints, d.AwardedPoints, d.Status, d.CreatedAt, d.ReviewedAt)
	if err != nil {
		return 0, fmt.Errorf("disposal repository create approved: %w", err)
	}

	balance, err := r.ledger.ApplyTx(ctx, tx, d.UserID, ledger.KindCreditDisposal,
		d.AwardedPoints.Int64, Description(d.WasteType), "disposal:"+d.ID.String())
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("disposal repository commit: %w", err)
	}
	return balance, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Disposal, error) {
	var d Disposal
	query := `SELECT ` + disposalColumns + ` FROM disposals WHERE id = $1`

	err := r.db.GetContext(ctx, &d, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDisposalNotFound
		}
		return nil, fmt.Errorf("disposal repository get: %w", err)
	}
	return &d, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Disposal, error) {
	var disposals []*Disposal
	query := `SELECT ` + disposalColumns + ` FROM disposals
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	err := r.db.SelectContext(ctx, &disposals, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("disposal repository list by user: %w", err)
	}
	return disposals, nil
}

func (r *Repository) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Disposal, error) {
	var disposals []*Disposal
	query := `SELECT ` + disposalColumns + ` FROM disposals
		WHERE status = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`

	err := r.db.SelectContext(ctx, &disposals, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("disposal repository list by status: %w", err)
	}
	return disposals, nil
}

func (r *Repository) CountByStatus(ctx context.Context, status Status) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM disposals WHERE status = $1`, status)
	if err != nil {
		return 0, fmt.Errorf("disposal repository count: %w", err)
	}
	return count, nil
}

// CountRecentByUserAndBin is the authoritative cooldown check
func (r *Repository) CountRecentByUserAndBin(ctx context.Context, userID, binID uuid.UUID, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM disposals
		WHERE user_id = $1 AND bin_id = $2 AND created_at > $3 AND status != 'rejected'`

	err := r.db.GetContext(ctx, &count, query, userID, binID, since)
	if err != nil {
		return 0, fmt.Errorf("disposal repository count recent: %w", err)
	}
	return count, nil
}

// Approve flips a pending disposal to approved and credits the reviewer's
// point value in one transaction. The WHERE status = 'pending' guard makes
// concurrent reviews of the same disposal lose cleanly: the second UPDATE
// matches no rows and the credit never runs.
func (r *Repository) Approve(ctx context.Context, id, reviewerID uuid.UUID, points int64, note string) (*Disposal, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("disposal repository begin: %w", err)
	}
	defer tx.Rollback()

	var d Disposal
	query := `
		UPDATE disposals
		SET status = 'approved', awarded_points = $1, reviewed_by = $2, review_note = NULLIF($3, ''), reviewed_at = $4
		WHERE id = $5 AND status = 'pending'
		RETURNING ` + disposalColumns

	err = tx.GetContext(ctx, &d, query, points, reviewerID, note, time.Now(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.notPendingOrMissing(ctx, id)
		}
		return nil, fmt.Errorf("disposal repository approve: %w", err)
	}

	_, err = r.ledger.ApplyTx(ctx, tx, d.UserID, ledger.KindCreditAudit,
		points, Description(d.WasteType), "disposal:"+d.ID.String())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("disposal repository commit: %w", err)
	}
	return &d, nil
}

// Reject records the review outcome; no ledger entry is written
func (r *Repository) Reject(ctx context.Context, id, reviewerID uuid.UUID, note string) (*Disposal, error) {
	var d Disposal
	query := `
		UPDATE disposals
		SET status = 'rejected', reviewed_by = $1, review_note = $2, reviewed_at = $3
		WHERE id = $4 AND status = 'pending'
		RETURNING ` + disposalColumns

	err := r.db.GetContext(ctx, &d, query, reviewerID, note, time.Now(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.notPendingOrMissing(ctx, id)
		}
		return nil, fmt.Errorf("disposal repository reject: %w", err)
	}
	return &d, nil
}

func (r *Repository) notPendingOrMissing(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM disposals WHERE id = $1)`, id)
	if err != nil {
		return fmt.Errorf("disposal repository exists: %w", err)
	}
	if exists {
		return ErrNotPending
	}
	return ErrDisposalNotFound
}
