package disposal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/recicla/recicla-api/internal/domain/bin"
	"github.com/recicla/recicla-api/internal/domain/evidence"
)

type Service struct {
	repo           *Repository
	bins           bin.Repository
	evidence       evidence.Repository
	redis          *redis.Client
	cooldown       time.Duration
	basePointValue int64
	logger         zerolog.Logger
}

func NewService(
	repo *Repository,
	bins bin.Repository,
	evidenceRepo evidence.Repository,
	redisClient *redis.Client,
	cooldown time.Duration,
	basePointValue int64,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:           repo,
		bins:           bins,
		evidence:       evidenceRepo,
		redis:          redisClient,
		cooldown:       cooldown,
		basePointValue: basePointValue,
		logger:         logger.With().Str("component", "disposal_service").Logger(),
	}
}

// Submit records a disposal at a bin. Auto-credit bins score and credit
// immediately; all others enter the pending review queue.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, req *CreateRequest) (*Disposal, error) {
	binID, err := uuid.Parse(req.BinID)
	if err != nil {
		return nil, bin.ErrBinNotFound
	}
	evidenceID, err := uuid.Parse(req.EvidenceID)
	if err != nil {
		return nil, ErrEvidenceNotFound
	}
	if req.VolumeLiters <= 0 {
		return nil, ErrInvalidVolume
	}

	b, err := s.bins.GetByID(ctx, binID)
	if err != nil {
		return nil, err
	}
	if !b.Active {
		return nil, bin.ErrBinInactive
	}
	if !b.AcceptsWasteType(req.WasteType) {
		return nil, ErrWasteNotAccepted
	}

	upload, err := s.evidence.GetByID(ctx, evidenceID)
	if err != nil {
		return nil, ErrEvidenceNotFound
	}
	if upload.UserID != userID {
		return nil, ErrEvidenceNotOwned
	}

	claimed, err := s.claimCooldown(ctx, userID, binID)
	if err != nil {
		return nil, err
	}

	d := &Disposal{
		ID:              uuid.New(),
		UserID:          userID,
		BinID:           binID,
		WasteType:       req.WasteType,
		VolumeLiters:    req.VolumeLiters,
		EvidenceKey:     upload.Key,
		EstimatedPoints: EstimatePoints(req.WasteType, req.VolumeLiters, s.basePointValue),
		Status:          StatusPending,
		CreatedAt:       time.Now(),
	}

	if b.AutoCredit {
		d.Status = StatusApproved
		d.AwardedPoints = sql.NullInt64{Int64: d.EstimatedPoints, Valid: true}
		d.ReviewedAt = sql.NullTime{Time: d.CreatedAt, Valid: true}

		balance, err := s.repo.CreateApproved(ctx, d)
		if err != nil {
			if claimed {
				s.releaseCooldown(ctx, userID, binID)
			}
			return nil, err
		}
		s.logger.Info().
			Str("disposal_id", d.ID.String()).
			Str("user_id", userID.String()).
			Int64("points", d.EstimatedPoints).
			Int64("balance", balance).
			Msg("auto-credit disposal recorded")
		return d, nil
	}

	if err := s.repo.Create(ctx, d); err != nil {
		if claimed {
			s.releaseCooldown(ctx, userID, binID)
		}
		return nil, err
	}
	s.logger.Info().
		Str("disposal_id", d.ID.String()).
		Str("user_id", userID.String()).
		Str("bin_id", binID.String()).
		Msg("disposal submitted for review")
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Disposal, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Disposal, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Disposal, int, error) {
	limit, offset = clampPage(limit, offset)
	disposals, err := s.repo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByStatus(ctx, status)
	if err != nil {
		return nil, 0, err
	}
	return disposals, total, nil
}

// Approve credits the administrator's point value; the estimate shown at
// submission is only a hint.
func (s *Service) Approve(ctx context.Context, id, reviewerID uuid.UUID, points int64, note string) (*Disposal, error) {
	if points <= 0 {
		return nil, ErrInvalidAwardValue
	}
	d, err := s.repo.Approve(ctx, id, reviewerID, points, note)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("disposal_id", id.String()).
		Str("reviewer_id", reviewerID.String()).
		Int64("points", points).
		Msg("disposal approved")
	return d, nil
}

// Reject marks a pending disposal rejected. The cooldown slot is given
// back so the user can immediately resubmit at the same bin.
func (s *Service) Reject(ctx context.Context, id, reviewerID uuid.UUID, note string) (*Disposal, error) {
	d, err := s.repo.Reject(ctx, id, reviewerID, note)
	if err != nil {
		return nil, err
	}
	s.releaseCooldown(ctx, d.UserID, d.BinID)
	s.logger.Info().
		Str("disposal_id", id.String()).
		Str("reviewer_id", reviewerID.String()).
		Msg("disposal rejected")
	return d, nil
}

// claimCooldown atomically claims the per-(user,bin) cooldown slot with
// Redis SET NX as the fast path; the database count over non-rejected
// disposals stays the source of truth. A claim that does not end in a
// stored submission must be released.
func (s *Service) claimCooldown(ctx context.Context, userID, binID uuid.UUID) (bool, error) {
	claimed := false
	if s.redis != nil {
		ok, err := s.redis.SetNX(ctx, cooldownKey(userID, binID), "1", s.cooldown).Result()
		if err == nil {
			if !ok {
				return false, ErrCooldownActive
			}
			claimed = true
		}
	}

	count, err := s.repo.CountRecentByUserAndBin(ctx, userID, binID, time.Now().Add(-s.cooldown))
	if err != nil || count > 0 {
		if claimed {
			s.releaseCooldown(ctx, userID, binID)
		}
		if err != nil {
			return false, err
		}
		return false, ErrCooldownActive
	}
	return claimed, nil
}

func (s *Service) releaseCooldown(ctx context.Context, userID, binID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, cooldownKey(userID, binID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to release cooldown key")
	}
}

func cooldownKey(userID, binID uuid.UUID) string {
	return fmt.Sprintf("cooldown:%s:%s", userID, binID)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
