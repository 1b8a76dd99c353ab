package claim

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/open-builders/satchat-backend/internal/common/errors"
	"github.com/open-builders/satchat-backend/internal/domain/account"
	"github.com/open-builders/satchat-backend/internal/repository/memory"
)

type failingDebitRepo struct {
	account.Repository
}

func (failingDebitRepo) DebitFullBalance(context.Context, int64, int64) (*account.Claim, error) {
	return nil, errors.New("deadlock detected")
}

func seed(t *testing.T, repo *memory.AccountRepository, id, balance int64, wallet string) {
	t.Helper()
	ctx := context.Background()
	_, _, err := repo.CreateIfAbsent(ctx, account.Profile{ID: id})
	require.NoError(t, err)
	if balance > 0 {
		_, err = repo.ApplyReward(ctx, id, balance, account.MessageRef{})
		require.NoError(t, err)
	}
	if wallet != "" {
		require.NoError(t, repo.SetWalletAddress(ctx, id, wallet))
	}
}

func balanceOf(t *testing.T, repo account.Repository, id int64) *account.Account {
	t.Helper()
	acc, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, acc)
	return acc
}

func TestClaimBelowMinimum(t *testing.T) {
	repo := memory.NewAccountRepository()
	seed(t, repo, 1, 500, "alice@ln.tips")
	p := NewProcessor(repo, 1000)

	_, err := p.Claim(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrBelowMinimum)
	assert.Equal(t, int64(500), balanceOf(t, repo, 1).Balance)
	assert.Empty(t, repo.Claims())
}

func TestClaimSettles(t *testing.T) {
	repo := memory.NewAccountRepository()
	seed(t, repo, 1, 1500, "alice@ln.tips")
	p := NewProcessor(repo, 1000)

	c, err := p.Claim(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), c.Amount)
	assert.Equal(t, "alice@ln.tips", c.WalletAddress)
	assert.Equal(t, account.ClaimStatusPending, c.Status)

	acc := balanceOf(t, repo, 1)
	assert.Zero(t, acc.Balance)
	assert.Equal(t, int64(1500), acc.TotalEarned)
	assert.Equal(t, int64(1), acc.MessageCount)
	assert.Len(t, repo.Claims(), 1)
}

func TestClaimExactlyMinimum(t *testing.T) {
	repo := memory.NewAccountRepository()
	seed(t, repo, 1, 1000, "alice@ln.tips")

	c, err := NewProcessor(repo, 1000).Claim(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), c.Amount)
}

func TestClaimRejectionOrder(t *testing.T) {
	repo := memory.NewAccountRepository()
	seed(t, repo, 1, 5000, "")
	seed(t, repo, 2, 0, "bob@ln.tips")
	seed(t, repo, 3, 0, "")
	p := NewProcessor(repo, 1000)
	ctx := context.Background()

	_, err := p.Claim(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	_, err = p.Claim(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrNoWalletLinked)
	assert.Equal(t, int64(5000), balanceOf(t, repo, 1).Balance)

	_, err = p.Claim(ctx, 2)
	assert.ErrorIs(t, err, apperrors.ErrZeroBalance)

	// No wallet wins over zero balance.
	_, err = p.Claim(ctx, 3)
	assert.ErrorIs(t, err, apperrors.ErrNoWalletLinked)
}

func TestClaimStorageFailureLeavesBalance(t *testing.T) {
	repo := memory.NewAccountRepository()
	seed(t, repo, 1, 1500, "alice@ln.tips")
	p := NewProcessor(failingDebitRepo{Repository: repo}, 1000)

	_, err := p.Claim(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrClaimFailed)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.Retryable())
	assert.Equal(t, int64(1500), balanceOf(t, repo, 1).Balance)
}

func TestClaimConcurrentRequestsSettleOnce(t *testing.T) {
	repo := memory.NewAccountRepository()
	seed(t, repo, 1, 2000, "alice@ln.tips")
	p := NewProcessor(repo, 1000)

	var settled, rejected int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Claim(context.Background(), 1)
			switch {
			case err == nil:
				atomic.AddInt32(&settled, 1)
			case errors.Is(err, apperrors.ErrZeroBalance):
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), settled)
	assert.Equal(t, int32(19), rejected)
	assert.Len(t, repo.Claims(), 1)
}

func TestNewProcessorDefaultsMinimum(t *testing.T) {
	assert.Equal(t, DefaultMinWithdrawal, NewProcessor(memory.NewAccountRepository(), 0).MinWithdrawal())
}
