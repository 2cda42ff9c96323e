package reward

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

func (r *Repository) Create(ctx context.Context, rw *Reward) error {
	query := `
		INSERT INTO rewards (id, title, description, cost, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		rw.ID, rw.Title, rw.Description, rw.Cost, rw.Active, rw.CreatedAt, rw.UpdatedAt)
	if err != nil {
		return fmt.Errorf("reward repository create: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Reward, error) {
	var rw Reward
	query := `SELECT id, title, description, cost, active, created_at, updated_at
		FROM rewards WHERE id = $1`

	err := r.db.GetContext(ctx, &rw, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRewardNotFound
		}
		return nil, fmt.Errorf("reward repository get: %w", err)
	}
	return &rw, nil
}

func (r *Repository) Update(ctx context.Context, rw *Reward) error {
	query := `
		UPDATE rewards
		SET title = $1, description = $2, cost = $3, active = $4, updated_at = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		rw.Title, rw.Description, rw.Cost, rw.Active, time.Now(), rw.ID)
	if err != nil {
		return fmt.Errorf("reward repository update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrRewardNotFound
	}
	return nil
}

func (r *Repository) ListActive(ctx context.Context) ([]*Reward, error) {
	var rewards []*Reward
	query := `SELECT id, title, description, cost, active, created_at, updated_at
		FROM rewards WHERE active = true ORDER BY cost ASC`

	err := r.db.SelectContext(ctx, &rewards, query)
	if err != nil {
		return nil, fmt.Errorf("reward repository list active: %w", err)
	}
	return rewards, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Reward, error) {
	var rewards []*Reward
	query := `SELECT id, title, description, cost, active, created_at, updated_at
		FROM rewards ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	err := r.db.SelectContext(ctx, &rewards, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("reward repository list: %w", err)
	}
	return rewards, nil
}

// Redeem inserts the redemption and debits the points in one transaction.
// An insufficient balance rolls both back.
func (r *Repository) Redeem(ctx context.Context, red *Redemption, description string) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return 0, fmt.Errorf("reward repository begin: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO redemptions (id, user_id, reward_id, cost, voucher_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = tx.ExecContext(ctx, query,
		red.ID, red.UserID, red.RewardID, red.Cost, red.VoucherCode, red.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("reward repository insert redemption: %w", err)
	}

	balance, err := r.ledger.ApplyTx(ctx, tx, red.UserID, ledger.KindDebitRedeem,
		-red.Cost, description, "redemption:"+red.ID.String())
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("reward repository commit: %w", err)
	}
	return balance, nil
}

func (r *Repository) ListRedemptionsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Redemption, error) {
	var redemptions []*Redemption
	query := `SELECT id, user_id, reward_id, cost, voucher_code, created_at
		FROM redemptions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	err := r.db.SelectContext(ctx, &redemptions, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("reward repository list redemptions: %w", err)
	}
	return redemptions, nil
}
