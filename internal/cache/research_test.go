package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/cache"
	"github.com/alexandercyber0x0/Idea-Hub-1/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*cache.ResearchCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.New(client, ttl)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestResearchCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, time.Hour)

	info := &models.ToolInfo{
		Description: models.StringPtr("Generates images"),
		Website:     models.StringPtr("https://example.com"),
		UseCases:    []string{"art"},
		Features:    []string{"upscaling"},
	}
	require.NoError(t, c.Set(ctx, "  Mid Journey ", info))

	got, err := c.Get(ctx, "mid   journey")
	require.NoError(t, err)
	assert.Equal(t, info, got)
}

func TestResearchCache_Miss(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	_, err := c.Get(context.Background(), "unknown")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestResearchCache_Expires(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, "tool", &models.ToolInfo{}))
	assert.Equal(t, time.Minute, mr.TTL(cache.Key("tool")))

	mr.FastForward(2 * time.Minute)
	_, err := c.Get(ctx, "tool")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestResearchCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	require.NoError(t, mr.Set(cache.Key("tool"), "{not json"))

	_, err := c.Get(context.Background(), "tool")
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrMiss)
}

func TestDial(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c, err := cache.Dial(context.Background(), mr.Addr(), time.Hour)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	addr := mr.Addr()
	mr.Close()
	_, err = cache.Dial(context.Background(), addr, time.Hour)
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, cache.Key("ChatGPT"), cache.Key("  chatgpt "))
	assert.NotEqual(t, cache.Key("chat gpt"), cache.Key("chatgpt"))
}
