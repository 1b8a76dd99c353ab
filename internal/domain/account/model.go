package account

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Account is the per-user reward ledger mirrored from a Telegram identity.
// ID is the Telegram user ID. Balance never drops below zero and never exceeds TotalEarned.
type Account struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Balance        int64      `json:"balance"`
	TotalEarned    int64      `json:"total_earned"`
	MessageCount   int64      `json:"message_count"`
	WalletAddress  string     `json:"wallet_address,omitempty"`
	WalletLinkedAt *time.Time `json:"wallet_linked_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastActiveAt   time.Time  `json:"last_active_at"`
}

// HasWallet reports whether a payout address is linked.
func (a *Account) HasWallet() bool { return a.WalletAddress != "" }

// DisplayName is the name used in replies.
func (a *Account) DisplayName() string {
	return Profile{ID: a.ID, Username: a.Username, FirstName: a.FirstName}.DisplayName()
}

// Profile is the informational part of an account as seen on an inbound update.
type Profile struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

func (p Profile) DisplayName() string {
	switch {
	case p.FirstName != "":
		return p.FirstName
	case p.Username != "":
		return "@" + p.Username
	default:
		return fmt.Sprintf("user %d", p.ID)
	}
}

// MessageRef identifies the chat message a reward was paid for.
type MessageRef struct {
	ChatID    int64
	MessageID int64
	Text      string
}

// RewardEvent is an append-only audit record of one credit.
type RewardEvent struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	Amount      int64     `json:"amount"`
	ChatID      int64     `json:"chat_id"`
	MessageID   int64     `json:"message_id"`
	MessageText string    `json:"message_text,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClaimStatusPending is the only status a claim ever has: payment happens off-system.
const ClaimStatusPending = "pending"

// Claim is an append-only record of a settled withdrawal request.
type Claim struct {
	ID            uuid.UUID `json:"id"`
	AccountID     int64     `json:"account_id"`
	Amount        int64     `json:"amount"`
	WalletAddress string    `json:"wallet_address"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// MaxMessageTextLen bounds the message text stored with a reward event.
const MaxMessageTextLen = 1024

// TruncateText cuts s to MaxMessageTextLen runes.
func TruncateText(s string) string {
	r := []rune(s)
	if len(r) <= MaxMessageTextLen {
		return s
	}
	return string(r[:MaxMessageTextLen])
}
