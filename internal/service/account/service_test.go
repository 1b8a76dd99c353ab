package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/open-builders/satchat-backend/internal/common/errors"
	domain "github.com/open-builders/satchat-backend/internal/domain/account"
	"github.com/open-builders/satchat-backend/internal/repository/memory"
)

// spyRepo counts wallet writes.
type spyRepo struct {
	domain.Repository
	walletWrites int
	failWrites   bool
}

func (s *spyRepo) SetWalletAddress(ctx context.Context, id int64, address string) error {
	s.walletWrites++
	if s.failWrites {
		return errors.New("disk full")
	}
	return s.Repository.SetWalletAddress(ctx, id, address)
}

func newService() (*Service, *spyRepo) {
	repo := &spyRepo{Repository: memory.NewAccountRepository()}
	return NewService(repo, NewWalletValidator([]string{"ln.tips"})), repo
}

func TestStartIsIdempotent(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	acc, created, err := svc.Start(ctx, domain.Profile{ID: 1, FirstName: "Ann"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Zero(t, acc.Balance)

	_, created, err = svc.Start(ctx, domain.Profile{ID: 1, FirstName: "Ann"})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestGetUnknownAccount(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestLinkWallet(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	_, _, err := svc.Start(ctx, domain.Profile{ID: 1})
	require.NoError(t, err)

	addr, err := svc.LinkWallet(ctx, 1, "Alice@LN.tips")
	require.NoError(t, err)
	assert.Equal(t, "alice@ln.tips", addr)

	acc, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice@ln.tips", acc.WalletAddress)
	require.NotNil(t, acc.WalletLinkedAt)

	// Relinking the same address succeeds.
	_, err = svc.LinkWallet(ctx, 1, "alice@ln.tips")
	require.NoError(t, err)

	_, err = svc.LinkWallet(ctx, 1, "bob@ln.tips")
	require.NoError(t, err)
	acc, _ = svc.Get(ctx, 1)
	assert.Equal(t, "bob@ln.tips", acc.WalletAddress)
	assert.Equal(t, 3, repo.walletWrites)
}

func TestLinkWalletMalformedDoesNotMutate(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	_, _, err := svc.Start(ctx, domain.Profile{ID: 1})
	require.NoError(t, err)

	_, err = svc.LinkWallet(ctx, 1, "alice-at-ln.tips")
	assert.ErrorIs(t, err, apperrors.ErrInvalidWallet)
	assert.Zero(t, repo.walletWrites)

	acc, _ := svc.Get(ctx, 1)
	assert.False(t, acc.HasWallet())
	assert.Nil(t, acc.WalletLinkedAt)
}

func TestLinkWalletUnknownAccount(t *testing.T) {
	svc, repo := newService()
	_, err := svc.LinkWallet(context.Background(), 9, "alice@ln.tips")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
	assert.Zero(t, repo.walletWrites)
}

func TestLinkWalletStorageFailure(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	_, _, err := svc.Start(ctx, domain.Profile{ID: 1})
	require.NoError(t, err)
	repo.failWrites = true

	_, err = svc.LinkWallet(ctx, 1, "alice@ln.tips")
	assert.Equal(t, apperrors.ErrCodeDatabaseError, apperrors.CodeOf(err))
}

func TestRecentRewards(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	_, _, err := svc.Start(ctx, domain.Profile{ID: 1})
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		_, err := repo.ApplyReward(ctx, 1, int64(i), domain.MessageRef{MessageID: int64(i)})
		require.NoError(t, err)
	}

	events, err := svc.RecentRewards(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(3), events[0].Amount)

	_, err = svc.RecentRewards(ctx, 2, 10)
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}
