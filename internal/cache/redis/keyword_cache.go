package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/open-builders/satchat-backend/internal/domain/keyword"
	rplatform "github.com/open-builders/satchat-backend/internal/platform/redis"
)

const keywordsKey = "keywords:all"

// KeywordCache stores the full keyword rule list as one JSON value.
type KeywordCache struct {
	client *rplatform.Client
	ttl    time.Duration
}

func NewKeywordCache(client *rplatform.Client, ttl time.Duration) *KeywordCache {
	return &KeywordCache{client: client, ttl: ttl}
}

// Get returns the cached rules. A miss is reported as redis.Nil.
func (c *KeywordCache) Get(ctx context.Context) ([]keyword.Rule, error) {
	v, err := c.client.Get(ctx, keywordsKey).Bytes()
	if err != nil {
		return nil, err
	}
	var rules []keyword.Rule
	if err := json.Unmarshal(v, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// Set replaces the cached list.
func (c *KeywordCache) Set(ctx context.Context, rules []keyword.Rule) error {
	if rules == nil {
		rules = []keyword.Rule{}
	}
	b, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keywordsKey, b, c.ttl).Err()
}

// Invalidate drops the cached list.
func (c *KeywordCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, keywordsKey).Err()
}
