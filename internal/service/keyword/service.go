package keyword

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	apperrors "github.com/open-builders/satchat-backend/internal/common/errors"
	"github.com/open-builders/satchat-backend/internal/common/logger"
	domain "github.com/open-builders/satchat-backend/internal/domain/keyword"
)

// MaxKeywordLen bounds the length of a keyword in runes.
const MaxKeywordLen = 64

// Cache is the shared cache of the full rule list.
type Cache interface {
	Get(ctx context.Context) ([]domain.Rule, error)
	Set(ctx context.Context, rules []domain.Rule) error
	Invalidate(ctx context.Context) error
}

// Service manages keyword rules with a cache-aside list.
type Service struct {
	repo          domain.Repository
	cache         Cache
	maxMultiplier decimal.Decimal
	onChange      func(ctx context.Context)
}

// NewService builds the keyword service. cache may be nil.
func NewService(repo domain.Repository, cache Cache, maxMultiplier decimal.Decimal) *Service {
	return &Service{repo: repo, cache: cache, maxMultiplier: maxMultiplier}
}

// OnChange registers a hook called after every successful edit.
func (s *Service) OnChange(fn func(ctx context.Context)) { s.onChange = fn }

// MaxMultiplier returns the largest accepted multiplier.
func (s *Service) MaxMultiplier() decimal.Decimal { return s.maxMultiplier }

func (s *Service) List(ctx context.Context) ([]domain.Rule, error) {
	if s.cache != nil {
		if rules, err := s.cache.Get(ctx); err == nil {
			return rules, nil
		}
	}
	rules, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list keywords", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, rules); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache keyword rules")
		}
	}
	return rules, nil
}

// Upsert validates and stores a rule, replacing the multiplier of an existing keyword.
func (s *Service) Upsert(ctx context.Context, kw string, multiplier decimal.Decimal) (*domain.Rule, error) {
	kw = domain.Normalize(kw)
	// Stored with two decimal places; validate what is stored.
	multiplier = multiplier.Round(2)
	if err := s.validate(kw, multiplier); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	rule := &domain.Rule{Keyword: kw, Multiplier: multiplier, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Upsert(ctx, rule); err != nil {
		return nil, apperrors.NewDatabaseError("upsert keyword", err)
	}
	s.changed(ctx)
	logger.Info().Str("keyword", rule.Keyword).Str("multiplier", rule.Multiplier.String()).Msg("Keyword rule saved")
	return rule, nil
}

// Delete removes a rule. It returns a NOT_FOUND error for unknown keywords.
func (s *Service) Delete(ctx context.Context, kw string) error {
	kw = domain.Normalize(kw)
	removed, err := s.repo.Delete(ctx, kw)
	if err != nil {
		return apperrors.NewDatabaseError("delete keyword", err)
	}
	if !removed {
		return apperrors.New(apperrors.ErrCodeNotFound, "Keyword not found: "+kw)
	}
	s.changed(ctx)
	logger.Info().Str("keyword", kw).Msg("Keyword rule deleted")
	return nil
}

func (s *Service) validate(kw string, m decimal.Decimal) error {
	switch {
	case kw == "":
		return apperrors.NewInvalidKeywordError("keyword is empty")
	case utf8.RuneCountInString(kw) > MaxKeywordLen:
		return apperrors.NewInvalidKeywordError("keyword is too long")
	case strings.ContainsAny(kw, "\n\r\t"):
		return apperrors.NewInvalidKeywordError("keyword must be a single line")
	case !m.IsPositive():
		return apperrors.NewInvalidKeywordError("multiplier must be positive")
	case m.GreaterThan(s.maxMultiplier):
		return apperrors.NewInvalidKeywordError("multiplier must not exceed " + s.maxMultiplier.String())
	}
	return nil
}

func (s *Service) changed(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to invalidate keyword cache")
		}
	}
	if s.onChange != nil {
		s.onChange(ctx)
	}
}
