package bin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines bin data access interface
type Repository interface {
	Create(ctx context.Context, bin *Bin) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bin, error)
	GetByQRCode(ctx context.Context, code string) (*Bin, error)
	Update(ctx context.Context, bin *Bin) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ListActive(ctx context.Context) ([]*Bin, error)
	List(ctx context.Context, limit, offset int) ([]*Bin, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new bin repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, bin *Bin) error {
	query := `
		INSERT INTO bins (id, name, description, latitude, longitude, waste_types, qr_code, auto_credit, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		bin.ID,
		bin.Name,
		bin.Description,
		bin.Latitude,
		bin.Longitude,
		bin.WasteTypes,
		bin.QRCode,
		bin.AutoCredit,
		bin.Active,
		bin.CreatedAt,
		bin.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateQRCode
		}
		return fmt.Errorf("bin repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Bin, error) {
	var b Bin
	err := r.db.GetContext(ctx, &b, `SELECT * FROM bins WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBinNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bin repository get by id: %w", err)
	}
	return &b, nil
}

func (r *repository) GetByQRCode(ctx context.Context, code string) (*Bin, error) {
	var b Bin
	err := r.db.GetContext(ctx, &b, `SELECT * FROM bins WHERE qr_code = $1`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBinNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bin repository get by qr code: %w", err)
	}
	return &b, nil
}

func (r *repository) Update(ctx context.Context, bin *Bin) error {
	query := `
		UPDATE bins
		SET name = $1, description = $2, latitude = $3, longitude = $4,
		    waste_types = $5, auto_credit = $6, active = $7, updated_at = now()
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		bin.Name,
		bin.Description,
		bin.Latitude,
		bin.Longitude,
		bin.WasteTypes,
		bin.AutoCredit,
		bin.Active,
		bin.ID,
	)
	if err != nil {
		return fmt.Errorf("bin repository update: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBinNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bins SET active = $1, updated_at = now() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("bin repository set active: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBinNotFound
	}
	return nil
}

func (r *repository) ListActive(ctx context.Context) ([]*Bin, error) {
	var bins []*Bin
	err := r.db.SelectContext(ctx, &bins, `SELECT * FROM bins WHERE active = true ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("bin repository list active: %w", err)
	}
	return bins, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]*Bin, error) {
	var bins []*Bin
	err := r.db.SelectContext(ctx, &bins,
		`SELECT * FROM bins ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bin repository list: %w", err)
	}
	return bins, nil
}
