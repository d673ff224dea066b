package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, ttl time.Duration) (*RateCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateCache(client, ttl), mr
}

func TestRateCache_GetMissing(t *testing.T) {
	c, _ := newCache(t, time.Minute)

	_, ok, err := c.Get(context.Background())

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRateCache_SetGet(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, decimal.RequireFromString("3")))

	stored, err := mr.Get(commissionRateKey)
	require.NoError(t, err)
	assert.Equal(t, "3.00", stored)

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("3.00")))
}

func TestRateCache_Expires(t *testing.T) {
	c, mr := newCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, decimal.RequireFromString("2.50")))
	mr.FastForward(31 * time.Second)

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRateCache_Invalidate(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, decimal.RequireFromString("5.00")))
	require.NoError(t, c.Invalidate(ctx))

	assert.False(t, mr.Exists(commissionRateKey))
}

func TestRateCache_Malformed(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	require.NoError(t, mr.Set(commissionRateKey, "two percent"))

	_, ok, err := c.Get(context.Background())

	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRateCache_ServerDown(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	mr.Close()

	_, _, err := c.Get(context.Background())

	assert.Error(t, err)
}
