package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

const commissionRateKey = "settlement:commission:percentage"

// RateCache keeps the effective commission percentage in Redis with a TTL.
// It only serves rate selection for new transactions.
type RateCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRateCache(client redis.Cmdable, ttl time.Duration) *RateCache {
	return &RateCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RateCache) Get(ctx context.Context) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, commissionRateKey).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	percentage, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("malformed cached commission rate %q: %w", val, err)
	}
	return percentage, true, nil
}

func (c *RateCache) Set(ctx context.Context, percentage decimal.Decimal) error {
	return c.client.Set(ctx, commissionRateKey, percentage.StringFixed(2), c.ttl).Err()
}

func (c *RateCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, commissionRateKey).Err()
}
