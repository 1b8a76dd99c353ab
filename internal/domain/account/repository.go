package account

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by mutating operations when the account does not exist.
var ErrNotFound = errors.New("account not found")

// ErrNegativeAmount is returned by ApplyReward for amounts below zero.
var ErrNegativeAmount = errors.New("reward amount must not be negative")

// InsufficientBalanceError is returned by DebitFullBalance when the balance observed
// under lock does not reach the requested minimum.
type InsufficientBalanceError struct {
	Balance int64
	Minimum int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("balance %d below minimum %d", e.Balance, e.Minimum)
}

// Repository is the durable account store. Every mutation is atomic per account.
type Repository interface {
	// GetByID returns nil, nil when the account does not exist.
	GetByID(ctx context.Context, id int64) (*Account, error)
	// CreateIfAbsent inserts the account or refreshes its profile fields if it exists.
	// created is true only for the call that inserted the row.
	CreateIfAbsent(ctx context.Context, p Profile) (acc *Account, created bool, err error)
	// ApplyReward adds amount to balance and total earned, bumps the message count,
	// touches last activity and appends a RewardEvent, all or nothing.
	// It returns the balance after the credit.
	ApplyReward(ctx context.Context, id int64, amount int64, ref MessageRef) (int64, error)
	// SetWalletAddress stores the address and stamps the link time.
	SetWalletAddress(ctx context.Context, id int64, address string) error
	// DebitFullBalance zeroes the balance if it is at least minimum and records a Claim
	// for the debited amount, all or nothing.
	DebitFullBalance(ctx context.Context, id int64, minimum int64) (*Claim, error)
	// RecentRewards lists the newest reward events first.
	RecentRewards(ctx context.Context, id int64, limit int) ([]RewardEvent, error)
}
