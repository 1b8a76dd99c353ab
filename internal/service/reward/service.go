package reward

import (
	"context"
	"fmt"
	"sync/atomic"

	apperrors "github.com/open-builders/satchat-backend/internal/common/errors"
	"github.com/open-builders/satchat-backend/internal/common/logger"
	"github.com/open-builders/satchat-backend/internal/domain/account"
)

// DailyStats tracks the amount distributed during the current day.
type DailyStats interface {
	Distributed(ctx context.Context) (int64, error)
	Record(ctx context.Context, userID, amount int64) error
}

// CapStore persists the daily cap set at runtime so it survives restarts.
type CapStore interface {
	LoadDailyCap(ctx context.Context) (value int64, ok bool, err error)
	SaveDailyCap(ctx context.Context, value int64) error
}

// MinDailyCap is the smallest cap an admin can set at runtime.
const MinDailyCap int64 = 1000

// Credit is the outcome of one rewarded message.
type Credit struct {
	Amount     int64
	NewBalance int64
	Created    bool
}

// Service turns inbound messages into balance credits.
type Service struct {
	repo     account.Repository
	table    *KeywordTable
	stats    DailyStats
	caps     CapStore
	dailyCap atomic.Int64
}

// NewService builds the reward service. stats may be nil; dailyCap 0 disables the cap.
func NewService(repo account.Repository, table *KeywordTable, stats DailyStats, dailyCap int64) *Service {
	s := &Service{repo: repo, table: table, stats: stats}
	s.dailyCap.Store(dailyCap)
	return s
}

// WithCapStore persists caps changed through SetDailyCap.
func (s *Service) WithCapStore(store CapStore) *Service {
	s.caps = store
	return s
}

// LoadDailyCap replaces the configured cap with the one saved by an admin, if any.
func (s *Service) LoadDailyCap(ctx context.Context) error {
	if s.caps == nil {
		return nil
	}
	v, ok, err := s.caps.LoadDailyCap(ctx)
	if err != nil {
		return err
	}
	if ok {
		s.dailyCap.Store(v)
		logger.Info().Int64("daily_cap", v).Msg("Loaded daily reward cap")
	}
	return nil
}

// SetDailyCap changes the cap at runtime. Values below MinDailyCap are rejected.
func (s *Service) SetDailyCap(ctx context.Context, value int64) error {
	if value < MinDailyCap {
		return apperrors.NewValidationError("daily_cap", fmt.Sprintf("must be at least %d sats", MinDailyCap))
	}
	if s.caps != nil {
		if err := s.caps.SaveDailyCap(ctx, value); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "Failed to save daily cap")
		}
	}
	s.dailyCap.Store(value)
	logger.Info().Int64("daily_cap", value).Msg("Daily reward cap updated")
	return nil
}

// Credit creates the account on first contact and credits the reward for one message.
// NewBalance is the balance returned by the atomic update, not a prior read.
func (s *Service) Credit(ctx context.Context, p account.Profile, ref account.MessageRef) (*Credit, error) {
	_, created, err := s.repo.CreateIfAbsent(ctx, p)
	if err != nil {
		return nil, apperrors.NewRewardCreditFailedError(p.ID, err)
	}

	if err := s.checkDailyCap(ctx); err != nil {
		return nil, err
	}

	amount := ComputeReward(ref.Text, s.table.Snapshot())
	ref.Text = account.TruncateText(ref.Text)
	balance, err := s.repo.ApplyReward(ctx, p.ID, amount, ref)
	if err != nil {
		return nil, apperrors.NewRewardCreditFailedError(p.ID, err)
	}

	if s.stats != nil {
		if err := s.stats.Record(ctx, p.ID, amount); err != nil {
			logger.Warn().Err(err).Int64("user_id", p.ID).Msg("Failed to record daily stats")
		}
	}

	logger.Debug().
		Int64("user_id", p.ID).
		Int64("chat_id", ref.ChatID).
		Int64("amount", amount).
		Int64("balance", balance).
		Msg("Reward credited")

	return &Credit{Amount: amount, NewBalance: balance, Created: created}, nil
}

// checkDailyCap rejects credits once the day's distribution reached the cap.
// The cap is soft: a stats backend failure lets the credit through.
func (s *Service) checkDailyCap(ctx context.Context) error {
	limit := s.dailyCap.Load()
	if limit <= 0 || s.stats == nil {
		return nil
	}
	distributed, err := s.stats.Distributed(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Daily stats unavailable, skipping cap check")
		return nil
	}
	if distributed >= limit {
		return apperrors.NewDailyCapReachedError(limit)
	}
	return nil
}

// DailyCap returns the current cap, 0 when disabled.
func (s *Service) DailyCap() int64 { return s.dailyCap.Load() }
