package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/open-builders/satchat-backend/internal/domain/account"
)

// AccountRepository persists accounts, reward events and claims in Postgres.
// Every mutation is a single statement or a single transaction scoped to one account row.
type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository { return &AccountRepository{db: db} }

const accountColumns = `id, COALESCE(username, ''), first_name, last_name, balance, total_earned, message_count,
	COALESCE(wallet_address, ''), wallet_linked_at, created_at, last_active_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner, extra ...any) (*account.Account, error) {
	var (
		a        account.Account
		linkedAt sql.NullTime
	)
	dest := []any{&a.ID, &a.Username, &a.FirstName, &a.LastName, &a.Balance, &a.TotalEarned, &a.MessageCount,
		&a.WalletAddress, &linkedAt, &a.CreatedAt, &a.LastActiveAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if linkedAt.Valid {
		t := linkedAt.Time
		a.WalletLinkedAt = &t
	}
	return &a, nil
}

// GetByID returns an account by Telegram ID, or nil if absent.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	a, err := scanAccount(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// CreateIfAbsent inserts the account or refreshes profile fields. Concurrent first
// contacts collapse onto the primary key; xmax = 0 tells the inserting call apart.
func (r *AccountRepository) CreateIfAbsent(ctx context.Context, p account.Profile) (*account.Account, bool, error) {
	q := `
	INSERT INTO accounts (id, username, first_name, last_name)
	VALUES ($1, NULLIF($2, ''), $3, $4)
	ON CONFLICT (id) DO UPDATE SET
		username = EXCLUDED.username,
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name
	RETURNING ` + accountColumns + `, (xmax = 0) AS inserted`
	var inserted bool
	a, err := scanAccount(r.db.QueryRowContext(ctx, q, p.ID, p.Username, p.FirstName, p.LastName), &inserted)
	if err != nil {
		return nil, false, err
	}
	return a, inserted, nil
}

// ApplyReward credits the account and appends the reward event in one transaction.
func (r *AccountRepository) ApplyReward(ctx context.Context, id int64, amount int64, ref account.MessageRef) (balance int64, err error) {
	if amount < 0 {
		return 0, account.ErrNegativeAmount
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const qCredit = `
	UPDATE accounts SET balance = balance + $2, total_earned = total_earned + $2,
		message_count = message_count + 1, last_active_at = now()
	WHERE id = $1
	RETURNING balance`
	if err = tx.QueryRowContext(ctx, qCredit, id, amount).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = account.ErrNotFound
		}
		return 0, err
	}

	const qEvent = `INSERT INTO reward_events (account_id, amount, chat_id, message_id, message_text) VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, qEvent, id, amount, ref.ChatID, ref.MessageID, account.TruncateText(ref.Text)); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return balance, nil
}

// SetWalletAddress stores the payout address and stamps wallet_linked_at.
func (r *AccountRepository) SetWalletAddress(ctx context.Context, id int64, address string) error {
	const q = `UPDATE accounts SET wallet_address = $2, wallet_linked_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, address)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return account.ErrNotFound
	}
	return nil
}

// DebitFullBalance locks the account row, zeroes the balance and records the claim.
func (r *AccountRepository) DebitFullBalance(ctx context.Context, id int64, minimum int64) (c *account.Claim, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		balance int64
		wallet  string
	)
	const qLock = `SELECT balance, COALESCE(wallet_address, '') FROM accounts WHERE id = $1 FOR UPDATE`
	if err = tx.QueryRowContext(ctx, qLock, id).Scan(&balance, &wallet); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = account.ErrNotFound
		}
		return nil, err
	}
	if balance <= 0 || balance < minimum {
		err = &account.InsufficientBalanceError{Balance: balance, Minimum: minimum}
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE accounts SET balance = 0 WHERE id = $1`, id); err != nil {
		return nil, err
	}

	c = &account.Claim{
		ID:            uuid.New(),
		AccountID:     id,
		Amount:        balance,
		WalletAddress: wallet,
		Status:        account.ClaimStatusPending,
	}
	const qClaim = `INSERT INTO claims (id, account_id, amount, wallet_address, status) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	if err = tx.QueryRowContext(ctx, qClaim, c.ID, c.AccountID, c.Amount, c.WalletAddress, c.Status).Scan(&c.CreatedAt); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return c, nil
}

// RecentRewards returns the newest reward events of an account.
func (r *AccountRepository) RecentRewards(ctx context.Context, id int64, limit int) ([]account.RewardEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const q = `
SELECT id, account_id, amount, chat_id, message_id, COALESCE(message_text, ''), created_at
FROM reward_events
WHERE account_id = $1
ORDER BY id DESC
LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []account.RewardEvent
	for rows.Next() {
		var e account.RewardEvent
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Amount, &e.ChatID, &e.MessageID, &e.MessageText, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
