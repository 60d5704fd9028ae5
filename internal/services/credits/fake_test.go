package credits

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/models"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/storage/repository"
)

// memRepo is an in-memory Repository whose WithTx restores state when fn fails.
type memRepo struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	ledger   []*models.CreditTransaction
}

func newMemRepo(users ...string) *memRepo {
	r := &memRepo{balances: map[string]decimal.Decimal{}}
	for _, u := range users {
		r.balances[u] = decimal.Zero
	}
	return r
}

func (r *memRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	saved := make(map[string]decimal.Decimal, len(r.balances))
	for k, v := range r.balances {
		saved[k] = v
	}
	n := len(r.ledger)
	r.mu.Unlock()

	if err := fn(ctx); err != nil {
		r.mu.Lock()
		r.balances = saved
		r.ledger = r.ledger[:n]
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *memRepo) LockUserBalance(_ context.Context, id string) (decimal.Decimal, error) {
	return r.GetUserBalance(context.Background(), id)
}

func (r *memRepo) GetUserBalance(_ context.Context, id string) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[id]
	if !ok {
		return decimal.Zero, repository.ErrNotFound
	}
	return b, nil
}

func (r *memRepo) UpdateUserBalance(_ context.Context, id string, balance decimal.Decimal, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if balance.IsNegative() {
		panic("negative balance written")
	}
	r.balances[id] = balance
	return nil
}

func (r *memRepo) InsertCreditTransaction(_ context.Context, t *models.CreditTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.ledger = append(r.ledger, &cp)
	return nil
}

func (r *memRepo) ListCreditTransactions(_ context.Context, userID string, _, _ int) ([]*models.CreditTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.CreditTransaction, 0)
	for _, t := range r.ledger {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memRepo) ledgerSum(userID string) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, t := range r.ledger {
		if t.UserID == userID {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}
