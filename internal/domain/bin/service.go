package bin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/recicla/recicla-api/internal/pkg/jwt"
)

// Service handles bin business logic
type Service struct {
	repo Repository
}

// NewService creates bin service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new collection point with a freshly minted QR token
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Bin, error) {
	code, err := jwt.GenerateOpaqueToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	b := &Bin{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		WasteTypes:  req.WasteTypes,
		QRCode:      code,
		AutoCredit:  req.AutoCredit,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	log.Info().Str("bin_id", b.ID.String()).Str("name", b.Name).Msg("bin created")
	return b, nil
}

// Update replaces the mutable fields of a bin
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*Bin, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	b.Name = req.Name
	b.Description = req.Description
	b.Latitude = req.Latitude
	b.Longitude = req.Longitude
	b.WasteTypes = req.WasteTypes
	b.AutoCredit = req.AutoCredit
	b.Active = req.Active

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Deactivate soft-disables a bin; its disposal history stays intact
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActive(ctx, id, false)
}

// GetByID returns a bin by id
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Bin, error) {
	return s.repo.GetByID(ctx, id)
}

// Resolve maps a scanned QR token to its active bin
func (s *Service) Resolve(ctx context.Context, code string) (*Bin, error) {
	b, err := s.repo.GetByQRCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !b.Active {
		return nil, ErrBinInactive
	}
	return b, nil
}

// ListActive lists active bins for the map view
func (s *Service) ListActive(ctx context.Context) ([]*Bin, error) {
	return s.repo.ListActive(ctx)
}

// List lists all bins for the admin view
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Bin, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}
