package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/open-builders/satchat-backend/internal/domain/account"
	"github.com/open-builders/satchat-backend/internal/domain/keyword"
)

// AccountResponse is the Mini App view of an account.
type AccountResponse struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username,omitempty"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Balance        int64      `json:"balance"`
	TotalEarned    int64      `json:"total_earned"`
	MessageCount   int64      `json:"message_count"`
	WalletAddress  string     `json:"wallet_address,omitempty"`
	WalletLinkedAt *time.Time `json:"wallet_linked_at,omitempty"`
	MinWithdrawal  int64      `json:"min_withdrawal"`
	CanClaim       bool       `json:"can_claim"`
	CreatedAt      time.Time  `json:"created_at"`
	LastActiveAt   time.Time  `json:"last_active_at"`
}

func toAccountResponse(a *account.Account, minWithdrawal int64) AccountResponse {
	return AccountResponse{
		ID:             a.ID,
		Username:       a.Username,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Balance:        a.Balance,
		TotalEarned:    a.TotalEarned,
		MessageCount:   a.MessageCount,
		WalletAddress:  a.WalletAddress,
		WalletLinkedAt: a.WalletLinkedAt,
		MinWithdrawal:  minWithdrawal,
		CanClaim:       a.HasWallet() && a.Balance > 0 && a.Balance >= minWithdrawal,
		CreatedAt:      a.CreatedAt,
		LastActiveAt:   a.LastActiveAt,
	}
}

type RewardsResponse struct {
	Items []account.RewardEvent `json:"items"`
}

type LinkWalletRequest struct {
	Address string `json:"address" binding:"required,max=320"`
}

type LinkWalletResponse struct {
	WalletAddress string `json:"wallet_address"`
}

// ClaimResponse carries the data for the manual payout.
type ClaimResponse struct {
	Claim        account.Claim `json:"claim"`
	Instructions []string      `json:"instructions"`
}

type KeywordsResponse struct {
	Items []keyword.Rule `json:"items"`
}

type UpsertKeywordRequest struct {
	Multiplier decimal.Decimal `json:"multiplier" swaggertype:"string" example:"2.5"`
}

type StatusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
