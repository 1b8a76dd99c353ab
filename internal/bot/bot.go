package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/open-builders/satchat-backend/internal/common/errors"
	"github.com/open-builders/satchat-backend/internal/common/logger"
	"github.com/open-builders/satchat-backend/internal/domain/account"
	accountsvc "github.com/open-builders/satchat-backend/internal/service/account"
	"github.com/open-builders/satchat-backend/internal/service/claim"
	keywordsvc "github.com/open-builders/satchat-backend/internal/service/keyword"
	"github.com/open-builders/satchat-backend/internal/service/reward"
)

// Bot renders one reply per inbound event. Errors never escape: each outcome,
// including storage failures, becomes reply text.
type Bot struct {
	accounts *accountsvc.Service
	rewards  *reward.Service
	claims   *claim.Processor
	keywords *keywordsvc.Service
	table    *reward.KeywordTable
	isAdmin  func(userID int64) bool
}

type Deps struct {
	Accounts *accountsvc.Service
	Rewards  *reward.Service
	Claims   *claim.Processor
	Keywords *keywordsvc.Service
	Table    *reward.KeywordTable
	IsAdmin  func(userID int64) bool
}

func New(d Deps) *Bot {
	isAdmin := d.IsAdmin
	if isAdmin == nil {
		isAdmin = func(int64) bool { return false }
	}
	return &Bot{
		accounts: d.Accounts,
		rewards:  d.Rewards,
		claims:   d.Claims,
		keywords: d.Keywords,
		table:    d.Table,
		isAdmin:  isAdmin,
	}
}

// OnTextMessage credits the reward for a plain chat message.
func (b *Bot) OnTextMessage(ctx context.Context, p account.Profile, text string, ref account.MessageRef) string {
	ref.Text = text
	c, err := b.rewards.Credit(ctx, p, ref)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.ErrCodeDailyCapReached {
			return dailyCapText(b.rewards.DailyCap())
		}
		logger.Error().Err(err).Int64("user_id", p.ID).Int64("chat_id", ref.ChatID).Msg("Reward credit failed")
		return msgRewardFailed
	}
	return rewardText(c.Amount, c.NewBalance)
}

func (b *Bot) OnStartCommand(ctx context.Context, p account.Profile) string {
	acc, created, err := b.accounts.Start(ctx, p)
	if err != nil {
		logger.Error().Err(err).Int64("user_id", p.ID).Msg("Start failed")
		return msgTryAgain
	}
	if created {
		return welcomeNew(p.DisplayName())
	}
	return welcomeBack(p.DisplayName(), acc.Balance)
}

func (b *Bot) OnBalanceQuery(ctx context.Context, userID int64) string {
	acc, err := b.accounts.Get(ctx, userID)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.ErrCodeAccountNotFound {
			return msgStartFirst
		}
		logger.Error().Err(err).Int64("user_id", userID).Msg("Balance query failed")
		return msgTryAgain
	}
	return balanceText(acc)
}

// OnLinkWalletCommand expects exactly one argument, the Lightning address.
func (b *Bot) OnLinkWalletCommand(ctx context.Context, userID int64, arg string) string {
	example := b.exampleAddress()
	fields := strings.Fields(arg)
	if len(fields) != 1 {
		return linkWalletUsage(example)
	}
	addr, err := b.accounts.LinkWallet(ctx, userID, fields[0])
	switch apperrors.CodeOf(err) {
	case "":
		return walletLinkedText(addr)
	case apperrors.ErrCodeAccountNotFound:
		return msgStartFirst
	case apperrors.ErrCodeInvalidWalletFormat:
		return invalidWalletText(example, b.accounts.WalletDomains())
	default:
		logger.Error().Err(err).Int64("user_id", userID).Msg("Wallet link failed")
		return msgLinkFailed
	}
}

func (b *Bot) OnClaimCommand(ctx context.Context, userID int64) string {
	c, err := b.claims.Claim(ctx, userID)
	if err == nil {
		return settlementText(c)
	}
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeAccountNotFound:
		return msgStartFirst
	case apperrors.ErrCodeNoWalletLinked:
		return msgNoWallet
	case apperrors.ErrCodeZeroBalance:
		return msgZeroBalance
	case apperrors.ErrCodeBelowMinimum:
		var balance int64
		if appErr, ok := apperrors.AsAppError(err); ok {
			balance, _ = appErr.Details["balance"].(int64)
		}
		return belowMinimumText(b.claims.MinWithdrawal(), balance)
	default:
		return msgClaimFailed
	}
}

func (b *Bot) OnHelpCommand(ctx context.Context, userID int64) string {
	return helpText(helpInfo{
		minWithdrawal: b.claims.MinWithdrawal(),
		dailyCap:      b.rewards.DailyCap(),
		keywords:      b.table.Len(),
		isAdmin:       b.isAdmin(userID),
	})
}

// OnAddKeywordCommand handles "/addkeyword <keyword> <multiplier>" from admins.
func (b *Bot) OnAddKeywordCommand(ctx context.Context, userID int64, args string) string {
	if !b.isAdmin(userID) {
		return msgAdminOnly
	}
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return msgAddKeywordHelp
	}
	m, err := decimal.NewFromString(fields[1])
	if err != nil {
		return msgAddKeywordHelp
	}
	rule, err := b.keywords.Upsert(ctx, fields[0], m)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeInvalidKeyword {
			return fmt.Sprintf("%s\nMultiplier must be greater than 0 and at most %s.", appErr.Message, b.keywords.MaxMultiplier())
		}
		logger.Error().Err(err).Int64("user_id", userID).Msg("Add keyword failed")
		return msgKeywordFailed
	}
	return fmt.Sprintf("Keyword %q now multiplies rewards by %sx.", rule.Keyword, rule.Multiplier.StringFixed(2))
}

// OnSetCapCommand handles "/setcap <amount>" from admins.
func (b *Bot) OnSetCapCommand(ctx context.Context, userID int64, args string) string {
	if !b.isAdmin(userID) {
		return msgAdminOnly
	}
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return msgSetCapHelp
	}
	value, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return msgSetCapHelp
	}
	if err := b.rewards.SetDailyCap(ctx, value); err != nil {
		if apperrors.CodeOf(err) == apperrors.ErrCodeValidation {
			return capTooLowText(reward.MinDailyCap)
		}
		logger.Error().Err(err).Int64("user_id", userID).Msg("Set daily cap failed")
		return msgSetCapFailed
	}
	return capUpdatedText(value)
}

func (b *Bot) exampleAddress() string {
	if d := b.accounts.WalletDomains(); len(d) > 0 {
		return "username@" + d[0]
	}
	return "username@ln.tips"
}
