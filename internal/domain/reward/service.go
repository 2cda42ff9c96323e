package reward

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/recicla/recicla-api/internal/domain/ledger"
)

// voucherAlphabet avoids look-alike characters (0/O, 1/I/L)
const voucherAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

type Service struct {
	repo   *Repository
	logger zerolog.Logger
}

func NewService(repo *Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "reward_service").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Reward, error) {
	now := time.Now()
	rw := &Reward{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Cost:        req.Cost,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, rw); err != nil {
		return nil, err
	}
	s.logger.Info().Str("reward_id", rw.ID.String()).Str("title", rw.Title).Msg("reward created")
	return rw, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*Reward, error) {
	rw, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		rw.Title = *req.Title
	}
	if req.Description != nil {
		rw.Description = *req.Description
	}
	if req.Cost != nil {
		rw.Cost = *req.Cost
	}
	if req.Active != nil {
		rw.Active = *req.Active
	}

	if err := s.repo.Update(ctx, rw); err != nil {
		return nil, err
	}
	return rw, nil
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	rw, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	rw.Active = false
	return s.repo.Update(ctx, rw)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Reward, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListActive(ctx context.Context) ([]*Reward, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Reward, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.List(ctx, limit, offset)
}

// Redeem issues a voucher and debits the reward's cost atomically.
// Callers map ledger.ErrInsufficientBalance to a user-facing rejection.
func (s *Service) Redeem(ctx context.Context, userID, rewardID uuid.UUID) (*Redemption, int64, error) {
	rw, err := s.repo.GetByID(ctx, rewardID)
	if err != nil {
		return nil, 0, err
	}
	if !rw.Active {
		return nil, 0, ErrRewardInactive
	}

	code, err := generateVoucherCode()
	if err != nil {
		return nil, 0, err
	}

	red := &Redemption{
		ID:          uuid.New(),
		UserID:      userID,
		RewardID:    rewardID,
		Cost:        rw.Cost,
		VoucherCode: code,
		CreatedAt:   time.Now(),
	}

	balance, err := s.repo.Redeem(ctx, red, "Resgate: "+rw.Title)
	if err != nil {
		if err == ledger.ErrInsufficientBalance {
			s.logger.Info().
				Str("user_id", userID.String()).
				Str("reward_id", rewardID.String()).
				Int64("cost", rw.Cost).
				Msg("redemption rejected: insufficient balance")
		}
		return nil, 0, err
	}

	s.logger.Info().
		Str("redemption_id", red.ID.String()).
		Str("user_id", userID.String()).
		Int64("cost", rw.Cost).
		Int64("balance", balance).
		Msg("reward redeemed")
	return red, balance, nil
}

func (s *Service) ListRedemptions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Redemption, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListRedemptionsByUser(ctx, userID, limit, offset)
}

func generateVoucherCode() (string, error) {
	buf := make([]byte, 10)
	max := big.NewInt(int64(len(voucherAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = voucherAlphabet[n.Int64()]
	}
	return "RCL-" + string(buf[:5]) + "-" + string(buf[5:]), nil
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
