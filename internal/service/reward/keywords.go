package reward

import (
	"context"
	"sync/atomic"

	"github.com/open-builders/satchat-backend/internal/domain/keyword"
)

// RuleSource loads the current keyword rules.
type RuleSource interface {
	List(ctx context.Context) ([]keyword.Rule, error)
}

// KeywordTable holds a read-only, sorted snapshot of keyword rules.
// Readers never block; Refresh swaps the snapshot atomically.
type KeywordTable struct {
	source RuleSource
	rules  atomic.Pointer[[]keyword.Rule]
}

func NewKeywordTable(source RuleSource) *KeywordTable {
	t := &KeywordTable{source: source}
	empty := []keyword.Rule{}
	t.rules.Store(&empty)
	return t
}

// Snapshot returns the current rules. Callers must not modify the slice.
func (t *KeywordTable) Snapshot() []keyword.Rule {
	return *t.rules.Load()
}

// Refresh reloads the rules. On error the previous snapshot stays in place.
func (t *KeywordTable) Refresh(ctx context.Context) error {
	rules, err := t.source.List(ctx)
	if err != nil {
		return err
	}
	sorted := make([]keyword.Rule, len(rules))
	copy(sorted, rules)
	keyword.Sort(sorted)
	t.rules.Store(&sorted)
	return nil
}

// Len returns the number of rules in the current snapshot.
func (t *KeywordTable) Len() int { return len(t.Snapshot()) }
