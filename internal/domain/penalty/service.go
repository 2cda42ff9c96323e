package penalty

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/recicla/recicla-api/internal/domain/user"
)

type Service struct {
	repo   *Repository
	users  user.Repository
	logger zerolog.Logger
}

func NewService(repo *Repository, users user.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		logger: logger.With().Str("component", "penalty_service").Logger(),
	}
}

func (s *Service) Apply(ctx context.Context, appliedBy uuid.UUID, req *ApplyRequest) (*Penalty, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, user.ErrUserNotFound
	}
	severity := Severity(req.Severity)
	if !severity.Valid() {
		return nil, ErrInvalidSeverity
	}

	// Confirm the target exists before writing the record
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	p := &Penalty{
		ID:        uuid.New(),
		UserID:    userID,
		Reason:    req.Reason,
		Severity:  severity,
		AppliedBy: appliedBy,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("penalty_id", p.ID.String()).
		Str("user_id", userID.String()).
		Str("severity", string(severity)).
		Str("applied_by", appliedBy.String()).
		Msg("penalty applied")
	return p, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Penalty, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Revoke(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("penalty_id", id.String()).Msg("penalty revoked")
	return nil
}
