package evidence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const maxProcessAttempts = 3

// Repository defines evidence upload data access interface
type Repository interface {
	Create(ctx context.Context, upload *Upload) error
	GetByID(ctx context.Context, id uuid.UUID) (*Upload, error)
	GetByKey(ctx context.Context, key string) (*Upload, error)
	// ClaimNext picks one upload still in need of processing, or ok=false.
	ClaimNext(ctx context.Context) (*Upload, bool, error)
	MarkProcessed(ctx context.Context, id uuid.UUID, thumbKey string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new evidence repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, upload *Upload) error {
	query := `
		INSERT INTO evidence_uploads (id, user_id, key, mime_type, size_bytes, status, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		upload.ID,
		upload.UserID,
		upload.Key,
		upload.MimeType,
		upload.SizeBytes,
		upload.Status,
		upload.Attempts,
		upload.CreatedAt,
		upload.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("evidence repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Upload, error) {
	var u Upload
	err := r.db.GetContext(ctx, &u, `SELECT * FROM evidence_uploads WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("evidence repository get by id: %w", err)
	}
	return &u, nil
}

func (r *repository) GetByKey(ctx context.Context, key string) (*Upload, error) {
	var u Upload
	err := r.db.GetContext(ctx, &u, `SELECT * FROM evidence_uploads WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("evidence repository get by key: %w", err)
	}
	return &u, nil
}

func (r *repository) ClaimNext(ctx context.Context) (*Upload, bool, error) {
	var u Upload
	err := r.db.GetContext(ctx, &u, `
		SELECT *
		FROM evidence_uploads
		WHERE status IN ('uploaded', 'failed')
		  AND attempts < $1
		ORDER BY created_at
		LIMIT 1
	`, maxProcessAttempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("evidence repository claim next: %w", err)
	}

	// Bump attempts up front so a crashing job cannot loop forever.
	_, err = r.db.ExecContext(ctx,
		`UPDATE evidence_uploads SET attempts = attempts + 1, updated_at = now() WHERE id = $1`, u.ID)
	if err != nil {
		return nil, false, fmt.Errorf("evidence repository claim next: %w", err)
	}
	return &u, true, nil
}

func (r *repository) MarkProcessed(ctx context.Context, id uuid.UUID, thumbKey string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE evidence_uploads
		SET status = 'processed', thumb_key = $1, process_error = NULL, updated_at = now()
		WHERE id = $2
	`, thumbKey, id)
	if err != nil {
		return fmt.Errorf("evidence repository mark processed: %w", err)
	}
	return nil
}

func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE evidence_uploads
		SET status = 'failed', process_error = $1, updated_at = now()
		WHERE id = $2
	`, reason, id)
	if err != nil {
		return fmt.Errorf("evidence repository mark failed: %w", err)
	}
	return nil
}
