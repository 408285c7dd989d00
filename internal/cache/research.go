// Package cache provides the Redis-backed cache for AI tool research results.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when nothing is cached for the name.
var ErrMiss = errors.New("cache: miss")

const keyPrefix = "idea-hub:research:"

// ResearchCache stores web research results by normalised tool name. Only
// public facts about a tool are cached; nothing sealed ever reaches Redis.
type ResearchCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// New creates a ResearchCache. ttl <= 0 keeps entries until evicted.
func New(client redis.UniversalClient, ttl time.Duration) *ResearchCache {
	return &ResearchCache{client: client, ttl: ttl}
}

// Dial connects to the Redis server at addr and pings it.
func Dial(ctx context.Context, addr string, ttl time.Duration) (*ResearchCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return New(client, ttl), nil
}

// Key returns the Redis key for a tool name; case and surrounding or repeated
// whitespace do not matter.
func Key(name string) string {
	return keyPrefix + strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Get returns the cached research for name or ErrMiss.
func (c *ResearchCache) Get(ctx context.Context, name string) (*models.ToolInfo, error) {
	b, err := c.client.Get(ctx, Key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var info models.ToolInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &info, nil
}

// Set stores research for name.
func (c *ResearchCache) Set(ctx context.Context, name string, info *models.ToolInfo) error {
	b, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, Key(name), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *ResearchCache) Close() error {
	return c.client.Close()
}
