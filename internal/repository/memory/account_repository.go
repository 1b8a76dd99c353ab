package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/open-builders/satchat-backend/internal/domain/account"
)

// AccountRepository keeps accounts in process memory. A single mutex serializes
// every mutation, which gives the same per-account atomicity as the Postgres
// repository. Used for STORAGE=memory and in service tests.
type AccountRepository struct {
	mu          sync.Mutex
	accounts    map[int64]*account.Account
	events      []account.RewardEvent
	claims      []account.Claim
	nextEventID int64
	now         func() time.Time
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[int64]*account.Account),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetByID returns a copy of the account or nil if absent.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *AccountRepository) CreateIfAbsent(ctx context.Context, p account.Profile) (*account.Account, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[p.ID]; ok {
		a.Username, a.FirstName, a.LastName = p.Username, p.FirstName, p.LastName
		cp := *a
		return &cp, false, nil
	}
	now := r.now()
	a := &account.Account{
		ID:           p.ID,
		Username:     p.Username,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	r.accounts[p.ID] = a
	cp := *a
	return &cp, true, nil
}

func (r *AccountRepository) ApplyReward(ctx context.Context, id int64, amount int64, ref account.MessageRef) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if amount < 0 {
		return 0, account.ErrNegativeAmount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return 0, account.ErrNotFound
	}
	now := r.now()
	a.Balance += amount
	a.TotalEarned += amount
	a.MessageCount++
	a.LastActiveAt = now

	r.nextEventID++
	r.events = append(r.events, account.RewardEvent{
		ID:          r.nextEventID,
		AccountID:   id,
		Amount:      amount,
		ChatID:      ref.ChatID,
		MessageID:   ref.MessageID,
		MessageText: account.TruncateText(ref.Text),
		CreatedAt:   now,
	})
	return a.Balance, nil
}

func (r *AccountRepository) SetWalletAddress(ctx context.Context, id int64, address string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return account.ErrNotFound
	}
	now := r.now()
	a.WalletAddress = address
	a.WalletLinkedAt = &now
	return nil
}

func (r *AccountRepository) DebitFullBalance(ctx context.Context, id int64, minimum int64) (*account.Claim, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	if a.Balance <= 0 || a.Balance < minimum {
		return nil, &account.InsufficientBalanceError{Balance: a.Balance, Minimum: minimum}
	}
	c := account.Claim{
		ID:            uuid.New(),
		AccountID:     id,
		Amount:        a.Balance,
		WalletAddress: a.WalletAddress,
		Status:        account.ClaimStatusPending,
		CreatedAt:     r.now(),
	}
	a.Balance = 0
	r.claims = append(r.claims, c)
	return &c, nil
}

func (r *AccountRepository) RecentRewards(ctx context.Context, id int64, limit int) ([]account.RewardEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []account.RewardEvent
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		if r.events[i].AccountID == id {
			out = append(out, r.events[i])
		}
	}
	return out, nil
}

// Count returns the number of stored accounts.
func (r *AccountRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}

// Claims returns a copy of all recorded claims in insertion order.
func (r *AccountRepository) Claims() []account.Claim {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]account.Claim(nil), r.claims...)
}
