package account

import (
	"context"
	"errors"

	apperrors "github.com/open-builders/satchat-backend/internal/common/errors"
	"github.com/open-builders/satchat-backend/internal/common/logger"
	domain "github.com/open-builders/satchat-backend/internal/domain/account"
)

// Service handles account lifecycle and wallet linking.
type Service struct {
	repo      domain.Repository
	validator *WalletValidator
}

func NewService(repo domain.Repository, validator *WalletValidator) *Service {
	return &Service{repo: repo, validator: validator}
}

// Start creates the account on first contact. created reports whether it is new.
func (s *Service) Start(ctx context.Context, p domain.Profile) (*domain.Account, bool, error) {
	acc, created, err := s.repo.CreateIfAbsent(ctx, p)
	if err != nil {
		return nil, false, apperrors.NewDatabaseError("create account", err)
	}
	if created {
		logger.Info().Int64("user_id", p.ID).Str("username", p.Username).Msg("Account created")
	}
	return acc, created, nil
}

// Get returns the account or ACCOUNT_NOT_FOUND.
func (s *Service) Get(ctx context.Context, userID int64) (*domain.Account, error) {
	acc, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get account", err)
	}
	if acc == nil {
		return nil, apperrors.NewAccountNotFoundError(userID)
	}
	return acc, nil
}

// LinkWallet validates and stores the payout address, replacing any previous one.
func (s *Service) LinkWallet(ctx context.Context, userID int64, address string) (string, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return "", err
	}
	addr, err := s.validator.Normalize(address)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetWalletAddress(ctx, userID, addr); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", apperrors.NewAccountNotFoundError(userID)
		}
		return "", apperrors.NewDatabaseError("set wallet address", err)
	}
	logger.Info().Int64("user_id", userID).Str("wallet", addr).Msg("Wallet linked")
	return addr, nil
}

// RecentRewards lists the newest reward events of an existing account.
func (s *Service) RecentRewards(ctx context.Context, userID int64, limit int) ([]domain.RewardEvent, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	events, err := s.repo.RecentRewards(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list rewards", err)
	}
	return events, nil
}

// WalletDomains returns the accepted wallet domains.
func (s *Service) WalletDomains() []string { return s.validator.Domains() }
