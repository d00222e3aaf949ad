package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crediflow/collections-service/internal/domain"
)

const caseCacheTTL = 30 * time.Second

// CaseCache is a read-through Redis cache for case lookups. Every case
// mutation (CRUD, state change, balance change) must invalidate the entry.
// A nil cache or unreachable Redis degrades to direct reads.
type CaseCache struct {
	client *redis.Client
}

// NewCaseCache wraps the redis client. Accepts nil.
func NewCaseCache(client *redis.Client) *CaseCache {
	return &CaseCache{client: client}
}

func caseCacheKey(id string) string {
	return "case:" + id
}

// Get returns the cached case, or nil on miss/error.
func (c *CaseCache) Get(ctx context.Context, id string) *domain.Case {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, caseCacheKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var kase domain.Case
	if err := json.Unmarshal(raw, &kase); err != nil {
		return nil
	}
	return &kase
}

// Set stores the case, best effort.
func (c *CaseCache) Set(ctx context.Context, kase *domain.Case) {
	if c == nil || c.client == nil || kase == nil {
		return
	}
	raw, err := json.Marshal(kase)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, caseCacheKey(kase.ID), raw, caseCacheTTL).Err()
}

// Invalidate drops the cached entry, best effort.
func (c *CaseCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, caseCacheKey(id)).Err()
}
