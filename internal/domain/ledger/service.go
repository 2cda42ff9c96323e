package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service exposes the three recognized ledger operations on top of a Store.
// Nothing else in the codebase mutates a balance: disposal scoring, audit
// approval and reward redemption all come through here (or through
// Repository.ApplyTx when they need to share a transaction).
type Service struct {
	store Store
}

// NewService creates ledger service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// EnsureAccount creates the point account at registration time
func (s *Service) EnsureAccount(ctx context.Context, userID uuid.UUID) error {
	return s.store.EnsureAccount(ctx, userID)
}

// GetBalance returns the current balance
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.Balance(ctx, userID)
}

// Statement returns the account's entries newest-first plus the total count
func (s *Service) Statement(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.store.Entries(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountEntries(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// CreditDisposal credits points from the automatic disposal scoring path
func (s *Service) CreditDisposal(ctx context.Context, userID uuid.UUID, points int64, description, referenceID string) (int64, error) {
	return s.credit(ctx, userID, KindCreditDisposal, points, description, referenceID)
}

// CreditAudit credits the administrator-chosen points on disposal approval
func (s *Service) CreditAudit(ctx context.Context, userID uuid.UUID, points int64, description, referenceID string) (int64, error) {
	return s.credit(ctx, userID, KindCreditAudit, points, description, referenceID)
}

// DebitRedeem debits the reward cost; rejected in full if the balance is short
func (s *Service) DebitRedeem(ctx context.Context, userID uuid.UUID, cost int64, description, referenceID string) (int64, error) {
	if cost <= 0 || referenceID == "" {
		return 0, ErrInvalidAmount
	}
	newBalance, err := s.store.Apply(ctx, userID, KindDebitRedeem, -cost, description, referenceID)
	if err != nil {
		return 0, err
	}
	log.Info().
		Str("user_id", userID.String()).
		Int64("cost", cost).
		Str("reference_id", referenceID).
		Int64("balance", newBalance).
		Msg("redeem debit applied")
	return newBalance, nil
}

func (s *Service) credit(ctx context.Context, userID uuid.UUID, kind EntryKind, points int64, description, referenceID string) (int64, error) {
	if points <= 0 {
		return 0, ErrInvalidAmount
	}
	newBalance, err := s.store.Apply(ctx, userID, kind, points, description, referenceID)
	if err != nil {
		return 0, err
	}
	log.Info().
		Str("user_id", userID.String()).
		Str("kind", string(kind)).
		Int64("points", points).
		Str("reference_id", referenceID).
		Int64("balance", newBalance).
		Msg("points credited")
	return newBalance, nil
}
