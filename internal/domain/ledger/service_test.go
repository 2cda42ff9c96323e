package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/recicla/recicla-api/internal/domain/ledger"
)

func newTestService(t *testing.T) (*ledger.Service, *ledger.MemStore, uuid.UUID) {
	t.Helper()
	store := ledger.NewMemStore()
	svc := ledger.NewService(store)
	userID := uuid.New()
	if err := svc.EnsureAccount(context.Background(), userID); err != nil {
		t.Fatalf("ensure account failed: %v", err)
	}
	return svc, store, userID
}

func TestBalanceStartsAtZero(t *testing.T) {
	svc, _, userID := newTestService(t)

	balance, err := svc.GetBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balance != 0 {
		t.Fatalf("expected balance 0 for new account, got %d", balance)
	}
}

func TestUnknownAccountNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetBalance(context.Background(), uuid.New())
	if !errors.Is(err, ledger.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	_, err = svc.CreditDisposal(context.Background(), uuid.New(), 10, "Descarte de papel", "disposal:x")
	if !errors.Is(err, ledger.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound on credit, got %v", err)
	}
}

func TestBalanceEqualsEntrySum(t *testing.T) {
	svc, _, userID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreditDisposal(ctx, userID, 30, "Descarte de plástico", "disposal:a"); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if _, err := svc.CreditAudit(ctx, userID, 50, "Descarte de metal", "disposal:b"); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if _, err := svc.DebitRedeem(ctx, userID, 20, "Resgate: Caneca", "redemption:c"); err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	entries, total, err := svc.Statement(ctx, userID, 100, 0)
	if err != nil {
		t.Fatalf("statement failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 entries, got %d", total)
	}

	var sum int64
	for _, e := range entries {
		sum += e.Amount
	}
	balance, _ := svc.GetBalance(ctx, userID)
	if balance != sum {
		t.Fatalf("balance %d does not equal entry sum %d", balance, sum)
	}
	if balance != 60 {
		t.Fatalf("expected balance 60, got %d", balance)
	}
}

func TestDebitNeverDrivesBalanceNegative(t *testing.T) {
	svc, _, userID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreditDisposal(ctx, userID, 10, "Descarte de vidro", "disposal:d"); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	_, err := svc.DebitRedeem(ctx, userID, 11, "Resgate: Caneca", "redemption:e")
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// Rejected debit leaves no trace
	balance, _ := svc.GetBalance(ctx, userID)
	if balance != 10 {
		t.Fatalf("expected balance 10 after rejected debit, got %d", balance)
	}
	_, total, _ := svc.Statement(ctx, userID, 100, 0)
	if total != 1 {
		t.Fatalf("expected 1 entry after rejected debit, got %d", total)
	}

	// Spending the exact balance is fine
	if _, err := svc.DebitRedeem(ctx, userID, 10, "Resgate: Adesivo", "redemption:f"); err != nil {
		t.Fatalf("exact-balance debit failed: %v", err)
	}
	balance, _ = svc.GetBalance(ctx, userID)
	if balance != 0 {
		t.Fatalf("expected balance 0, got %d", balance)
	}
}

func TestInvalidAmounts(t *testing.T) {
	svc, _, userID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreditDisposal(ctx, userID, 0, "x", ""); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero credit, got %v", err)
	}
	if _, err := svc.CreditAudit(ctx, userID, -5, "x", ""); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative credit, got %v", err)
	}
	if _, err := svc.DebitRedeem(ctx, userID, 5, "x", ""); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for empty debit reference, got %v", err)
	}
}

func TestApplyIdempotency(t *testing.T) {
	svc, _, userID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreditAudit(ctx, userID, 40, "Descarte de papel", "disposal:g"); err != nil {
		t.Fatalf("first credit failed: %v", err)
	}
	// Retry with the same reference is a no-op
	balance, err := svc.CreditAudit(ctx, userID, 40, "Descarte de papel", "disposal:g")
	if err != nil {
		t.Fatalf("idempotent retry failed: %v", err)
	}
	if balance != 40 {
		t.Fatalf("expected balance 40 after retry, got %d", balance)
	}
	_, total, _ := svc.Statement(ctx, userID, 100, 0)
	if total != 1 {
		t.Fatalf("expected 1 entry after retry, got %d", total)
	}

	// Same reference, different amount is a conflict
	_, err = svc.CreditAudit(ctx, userID, 41, "Descarte de papel", "disposal:g")
	if !errors.Is(err, ledger.ErrReferenceConflict) {
		t.Fatalf("expected ErrReferenceConflict, got %v", err)
	}
}

func TestStorageFaultLeavesNoPartialState(t *testing.T) {
	svc, store, userID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreditDisposal(ctx, userID, 100, "Descarte de metal", "disposal:h"); err != nil {
		t.Fatalf("seed credit failed: %v", err)
	}

	boom := errors.New("disk on fire")
	store.FaultHook = func(uuid.UUID, ledger.EntryKind) error { return boom }

	if _, err := svc.DebitRedeem(ctx, userID, 30, "Resgate: Caneca", "redemption:i"); !errors.Is(err, boom) {
		t.Fatalf("expected injected fault, got %v", err)
	}

	store.FaultHook = nil
	balance, _ := svc.GetBalance(ctx, userID)
	if balance != 100 {
		t.Fatalf("expected balance 100 after aborted debit, got %d", balance)
	}
	_, total, _ := svc.Statement(ctx, userID, 100, 0)
	if total != 1 {
		t.Fatalf("expected 1 entry after aborted debit, got %d", total)
	}
}

func TestConcurrentDebitsNeverOverspend(t *testing.T) {
	svc, _, userID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreditDisposal(ctx, userID, 5, "Descarte de plástico", "disposal:j"); err != nil {
		t.Fatalf("seed credit failed: %v", err)
	}

	const workers = 10
	var wg sync.WaitGroup
	success := 0
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.DebitRedeem(ctx, userID, 1, "Resgate: Adesivo", fmt.Sprintf("redemption:k%d", i))
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ledger.ErrInsufficientBalance) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if success != 5 {
		t.Fatalf("expected 5 successful debits, got %d", success)
	}
	balance, _ := svc.GetBalance(ctx, userID)
	if balance != 0 {
		t.Fatalf("expected balance 0, got %d", balance)
	}
}

func TestConcurrentMixedOpsConserveSum(t *testing.T) {
	svc, _, userID := newTestService(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = svc.CreditDisposal(ctx, userID, 2, "Descarte de papel", fmt.Sprintf("disposal:m%d", i))
			} else {
				_, _ = svc.DebitRedeem(ctx, userID, 1, "Resgate: Adesivo", fmt.Sprintf("redemption:m%d", i))
			}
		}(i)
	}
	wg.Wait()

	entries, _, err := svc.Statement(ctx, userID, 100, 0)
	if err != nil {
		t.Fatalf("statement failed: %v", err)
	}
	var sum int64
	for _, e := range entries {
		sum += e.Amount
	}
	balance, _ := svc.GetBalance(ctx, userID)
	if balance != sum {
		t.Fatalf("balance %d diverged from entry sum %d", balance, sum)
	}
	if balance < 0 {
		t.Fatalf("balance went negative: %d", balance)
	}
}

func TestStatementNewestFirstAndPaginated(t *testing.T) {
	svc, _, userID := newTestService(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if _, err := svc.CreditDisposal(ctx, userID, int64(i), "Descarte de vidro", fmt.Sprintf("disposal:n%d", i)); err != nil {
			t.Fatalf("credit %d failed: %v", i, err)
		}
	}

	entries, total, err := svc.Statement(ctx, userID, 2, 0)
	if err != nil {
		t.Fatalf("statement failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(entries) != 2 {
		t.Fatalf("expected page of 2, got %d", len(entries))
	}
	if entries[0].Amount != 5 || entries[1].Amount != 4 {
		t.Fatalf("expected newest-first order, got %d then %d", entries[0].Amount, entries[1].Amount)
	}

	entries, _, err = svc.Statement(ctx, userID, 2, 4)
	if err != nil {
		t.Fatalf("statement offset failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Amount != 1 {
		t.Fatalf("expected last page with oldest entry, got %+v", entries)
	}
}

func TestSeparateAccountsDoNotBlockEachOther(t *testing.T) {
	svc, _, userA := newTestService(t)
	ctx := context.Background()

	userB := uuid.New()
	if err := svc.EnsureAccount(ctx, userB); err != nil {
		t.Fatalf("ensure account failed: %v", err)
	}

	if _, err := svc.CreditDisposal(ctx, userA, 100, "Descarte de plástico", "disposal:a0"); err != nil {
		t.Fatalf("seed credit failed: %v", err)
	}
	if _, err := svc.CreditDisposal(ctx, userB, 100, "Descarte de plástico", "disposal:b0"); err != nil {
		t.Fatalf("seed credit failed: %v", err)
	}

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.CreditAudit(ctx, userA, 3, "Descarte de papel", fmt.Sprintf("disposal:a%d", i+1)); err != nil {
				t.Errorf("credit on first account: %v", err)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.DebitRedeem(ctx, userB, 5, "Resgate: Adesivo", fmt.Sprintf("redemption:b%d", i+1)); err != nil {
				t.Errorf("debit on second account: %v", err)
			}
		}(i)
	}
	wg.Wait()

	balanceA, err := svc.GetBalance(ctx, userA)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balanceA != 100+3*n {
		t.Fatalf("expected first account balance %d, got %d", 100+3*n, balanceA)
	}

	balanceB, err := svc.GetBalance(ctx, userB)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balanceB != 0 {
		t.Fatalf("expected second account drained to 0, got %d", balanceB)
	}
}
