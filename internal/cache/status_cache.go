// Package cache holds the optional redis-backed cache of the live status
// board. The board is recomputed by the projector on every dashboard refresh;
// a short TTL keeps bursts of refreshes from hammering the database.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lracdim/trazer-backend/internal/tracking"
	goredis "github.com/redis/go-redis/v9"
)

const statusKey = "guards:active-statuses"

type StatusCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewStatusCache connects to redis. The cache is optional: callers keep a
// nil *StatusCache when no redis address is configured, and every method is
// nil-safe.
func NewStatusCache(ctx context.Context, addr, password string, ttl time.Duration) (*StatusCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &StatusCache{client: client, ttl: ttl}, nil
}

// Get returns the cached board, or ok=false on miss, cache disabled, or any
// redis failure. A broken cache degrades to recomputation, never to an error.
func (c *StatusCache) Get(ctx context.Context) ([]tracking.StatusEntry, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, statusKey).Bytes()

	if err != nil {
		return nil, false
	}

	var entries []tracking.StatusEntry

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}

	return entries, true
}

func (c *StatusCache) Set(ctx context.Context, entries []tracking.StatusEntry) {
	if c == nil {
		return
	}

	data, err := json.Marshal(entries)

	if err != nil {
		return
	}

	c.client.Set(ctx, statusKey, data, c.ttl)
}

// Invalidate drops the cached board, forcing the next read to recompute.
// Called after state-changing actions so dashboards never see a stale status
// for a full TTL.
func (c *StatusCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}

	c.client.Del(ctx, statusKey)
}

func (c *StatusCache) Close() error {
	if c == nil {
		return nil
	}

	return c.client.Close()
}
