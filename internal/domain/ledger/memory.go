package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store with per-account mutex serialization.
// It mirrors the Repository contract exactly and exists so the service and
// the invariant tests can run without Postgres.
type MemStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*memAccount

	// FaultHook, when set, is called inside Apply after the balance check and
	// before any state change; a non-nil return aborts the operation with no
	// mutation. Tests use it to simulate storage faults.
	FaultHook func(userID uuid.UUID, kind EntryKind) error
}

type memAccount struct {
	mu      sync.Mutex
	balance int64
	entries []*Entry
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{accounts: make(map[uuid.UUID]*memAccount)}
}

func (m *MemStore) EnsureAccount(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[userID]; !ok {
		m.accounts[userID] = &memAccount{}
	}
	return nil
}

func (m *MemStore) account(userID uuid.UUID) (*memAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return acc, nil
}

func (m *MemStore) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	acc, err := m.account(userID)
	if err != nil {
		return 0, err
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.balance, nil
}

func (m *MemStore) Entries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, error) {
	acc, err := m.account(userID)
	if err != nil {
		return nil, err
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()

	// Stored oldest-first; serve newest-first.
	n := len(acc.entries)
	out := make([]*Entry, 0, limit)
	for i := n - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, acc.entries[i])
	}
	return out, nil
}

func (m *MemStore) CountEntries(ctx context.Context, userID uuid.UUID) (int, error) {
	acc, err := m.account(userID)
	if err != nil {
		return 0, err
	}
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return len(acc.entries), nil
}

func (m *MemStore) Apply(ctx context.Context, userID uuid.UUID, kind EntryKind, amount int64, description, referenceID string) (int64, error) {
	acc, err := m.account(userID)
	if err != nil {
		return 0, err
	}

	// Per-account lock: same-account calls serialize, different accounts proceed.
	acc.mu.Lock()
	defer acc.mu.Unlock()

	if referenceID != "" {
		for _, e := range acc.entries {
			if e.Kind == kind && e.ReferenceID != nil && *e.ReferenceID == referenceID {
				if e.Amount != amount {
					return 0, ErrReferenceConflict
				}
				return acc.balance, nil
			}
		}
	}

	nextBalance := acc.balance + amount
	if nextBalance < 0 {
		return 0, ErrInsufficientBalance
	}

	if m.FaultHook != nil {
		if err := m.FaultHook(userID, kind); err != nil {
			return 0, err
		}
	}

	entry := &Entry{
		ID:          uuid.New(),
		UserID:      userID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if referenceID != "" {
		ref := referenceID
		entry.ReferenceID = &ref
	}

	acc.balance = nextBalance
	acc.entries = append(acc.entries, entry)
	return nextBalance, nil
}
