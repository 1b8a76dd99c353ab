package claim

import (
	"context"
	"errors"

	apperrors "github.com/open-builders/satchat-backend/internal/common/errors"
	"github.com/open-builders/satchat-backend/internal/common/logger"
	"github.com/open-builders/satchat-backend/internal/domain/account"
)

// DefaultMinWithdrawal is the smallest balance that can be claimed.
const DefaultMinWithdrawal int64 = 1000

// Processor validates and settles claim requests.
//
// A claim is rejected with ACCOUNT_NOT_FOUND, NO_WALLET_LINKED, ZERO_BALANCE or
// BELOW_MINIMUM, checked in that order. Otherwise the full balance is debited in one
// atomic step and the returned Claim carries the payout instructions' data.
// Settlement is advisory: the payment itself happens outside the system.
type Processor struct {
	repo          account.Repository
	minWithdrawal int64
}

func NewProcessor(repo account.Repository, minWithdrawal int64) *Processor {
	if minWithdrawal <= 0 {
		minWithdrawal = DefaultMinWithdrawal
	}
	return &Processor{repo: repo, minWithdrawal: minWithdrawal}
}

// MinWithdrawal returns the configured minimum.
func (p *Processor) MinWithdrawal() int64 { return p.minWithdrawal }

func (p *Processor) Claim(ctx context.Context, userID int64) (*account.Claim, error) {
	acc, err := p.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewClaimFailedError(userID, err)
	}
	if acc == nil {
		return nil, apperrors.NewAccountNotFoundError(userID)
	}
	if !acc.HasWallet() {
		return nil, apperrors.NewNoWalletLinkedError(userID)
	}
	if err := p.checkBalance(userID, acc.Balance); err != nil {
		return nil, err
	}

	c, err := p.repo.DebitFullBalance(ctx, userID, p.minWithdrawal)
	if err != nil {
		// The balance may have changed between the read above and the row lock.
		var insufficient *account.InsufficientBalanceError
		if errors.As(err, &insufficient) {
			return nil, p.checkBalance(userID, insufficient.Balance)
		}
		if errors.Is(err, account.ErrNotFound) {
			return nil, apperrors.NewAccountNotFoundError(userID)
		}
		logger.Error().Err(err).Int64("user_id", userID).Msg("Claim debit failed")
		return nil, apperrors.NewClaimFailedError(userID, err)
	}

	logger.Info().
		Int64("user_id", userID).
		Int64("amount", c.Amount).
		Str("wallet", c.WalletAddress).
		Str("claim_id", c.ID.String()).
		Msg("Claim settled")
	return c, nil
}

func (p *Processor) checkBalance(userID, balance int64) error {
	if balance <= 0 {
		return apperrors.NewZeroBalanceError(userID)
	}
	if balance < p.minWithdrawal {
		return apperrors.NewBelowMinimumError(userID, balance, p.minWithdrawal)
	}
	return nil
}
