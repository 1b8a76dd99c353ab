package memory

import (
	"context"
	"sync"
	"time"

	"github.com/open-builders/satchat-backend/internal/domain/keyword"
)

// KeywordRepository keeps keyword rules in memory.
type KeywordRepository struct {
	mu    sync.RWMutex
	rules map[string]keyword.Rule
}

func NewKeywordRepository() *KeywordRepository {
	return &KeywordRepository{rules: make(map[string]keyword.Rule)}
}

func (r *KeywordRepository) List(ctx context.Context) ([]keyword.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]keyword.Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	r.mu.RUnlock()
	keyword.Sort(out)
	return out, nil
}

func (r *KeywordRepository) Upsert(ctx context.Context, rule *keyword.Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k := keyword.Normalize(rule.Keyword)
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rules[k]
	if !ok {
		stored = keyword.Rule{Keyword: k, CreatedAt: now}
	}
	stored.Multiplier = rule.Multiplier
	stored.UpdatedAt = now
	r.rules[k] = stored
	*rule = stored
	return nil
}

func (r *KeywordRepository) Delete(ctx context.Context, kw string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	k := keyword.Normalize(kw)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[k]; !ok {
		return false, nil
	}
	delete(r.rules, k)
	return true, nil
}
