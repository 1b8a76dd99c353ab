package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-builders/satchat-backend/internal/domain/account"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var accountCols = []string{"id", "username", "first_name", "last_name", "balance", "total_earned", "message_count",
	"wallet_address", "wallet_linked_at", "created_at", "last_active_at"}

func TestAccountGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(accountCols))

	a, err := NewAccountRepository(db).GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestAccountGetByID(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(accountCols).
			AddRow(int64(5), "ada", "Ada", "L", int64(40), int64(50), int64(12), "ada@ln.tips", now, now, now))

	a, err := NewAccountRepository(db).GetByID(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, int64(40), a.Balance)
	assert.Equal(t, "ada@ln.tips", a.WalletAddress)
	require.NotNil(t, a.WalletLinkedAt)
	assert.True(t, a.HasWallet())
}

func TestAccountCreateIfAbsent(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE SET")).
		WithArgs(int64(9), "bob", "Bob", "").
		WillReturnRows(sqlmock.NewRows(append(accountCols, "inserted")).
			AddRow(int64(9), "bob", "Bob", "", int64(0), int64(0), int64(0), "", nil, now, now, true))

	a, created, err := NewAccountRepository(db).CreateIfAbsent(context.Background(), account.Profile{ID: 9, Username: "bob", FirstName: "Bob"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Nil(t, a.WalletLinkedAt)
	assert.Equal(t, "Bob", a.FirstName)
}

func TestAccountApplyReward(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE accounts SET balance = balance + $2")).
		WithArgs(int64(1), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(103)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reward_events")).
		WithArgs(int64(1), int64(3), int64(-100), int64(55), "sats!").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	balance, err := NewAccountRepository(db).ApplyReward(context.Background(), 1, 3,
		account.MessageRef{ChatID: -100, MessageID: 55, Text: "sats!"})
	require.NoError(t, err)
	assert.Equal(t, int64(103), balance)
}

func TestAccountApplyRewardRollsBackOnEventFailure(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE accounts SET balance = balance + $2")).
		WithArgs(int64(1), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(int64(2)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reward_events")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := NewAccountRepository(db).ApplyReward(context.Background(), 1, 1, account.MessageRef{})
	assert.EqualError(t, err, "disk full")
}

func TestAccountApplyRewardUnknownAccount(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE accounts SET balance = balance + $2")).
		WithArgs(int64(1), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}))
	mock.ExpectRollback()

	_, err := NewAccountRepository(db).ApplyReward(context.Background(), 1, 1, account.MessageRef{})
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestAccountApplyRewardRejectsNegativeAmount(t *testing.T) {
	db, _ := newMock(t)

	_, err := NewAccountRepository(db).ApplyReward(context.Background(), 1, -1, account.MessageRef{})
	assert.ErrorIs(t, err, account.ErrNegativeAmount)
}

func TestAccountSetWalletAddress(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET wallet_address = $2, wallet_linked_at = now()")).
		WithArgs(int64(1), "a@ln.tips").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET wallet_address = $2, wallet_linked_at = now()")).
		WithArgs(int64(2), "a@ln.tips").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewAccountRepository(db)
	require.NoError(t, repo.SetWalletAddress(context.Background(), 1, "a@ln.tips"))
	assert.ErrorIs(t, repo.SetWalletAddress(context.Background(), 2, "a@ln.tips"), account.ErrNotFound)
}

func TestAccountDebitFullBalance(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"balance", "wallet_address"}).AddRow(int64(1500), "a@ln.tips"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET balance = 0 WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO claims")).
		WithArgs(sqlmock.AnyArg(), int64(1), int64(1500), "a@ln.tips", account.ClaimStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectCommit()

	c, err := NewAccountRepository(db).DebitFullBalance(context.Background(), 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), c.Amount)
	assert.Equal(t, "a@ln.tips", c.WalletAddress)
	assert.Equal(t, now, c.CreatedAt)
}

func TestAccountDebitFullBalanceBelowMinimumRollsBack(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"balance", "wallet_address"}).AddRow(int64(500), "a@ln.tips"))
	mock.ExpectRollback()

	_, err := NewAccountRepository(db).DebitFullBalance(context.Background(), 1, 1000)
	var insufficient *account.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(500), insufficient.Balance)
}

func TestAccountDebitFullBalanceRollsBackOnClaimInsertFailure(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"balance", "wallet_address"}).AddRow(int64(1500), "a@ln.tips"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET balance = 0")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO claims")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := NewAccountRepository(db).DebitFullBalance(context.Background(), 1, 1000)
	assert.EqualError(t, err, "connection reset")
}

func TestAccountRecentRewards(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM reward_events")).
		WithArgs(int64(1), 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "amount", "chat_id", "message_id", "message_text", "created_at"}).
			AddRow(int64(2), int64(1), int64(3), int64(-1), int64(9), "sats", now).
			AddRow(int64(1), int64(1), int64(1), int64(-1), int64(8), "hi", now))

	events, err := NewAccountRepository(db).RecentRewards(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(3), events[0].Amount)
}
