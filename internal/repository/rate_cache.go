package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/models"
	"github.com/nileops/remit-console/internal/observability"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const rateCachePrefix = "rate"

type rateBackend interface {
	GetActiveRate(ctx context.Context, key models.RateKey) (decimal.Decimal, error)
	UpsertRate(ctx context.Context, rate *models.ExchangeRate) error
	ListActiveRates(ctx context.Context) ([]models.ExchangeRate, error)
}

// CachedRates serves active rate lookups from Redis and falls back to the
// backing store. Writes go to the store first, then evict the cached value.
// Redis errors are logged and never fail a call.
type CachedRates struct {
	next  rateBackend
	redis redis.Cmdable
	ttl   time.Duration
}

func NewCachedRates(next rateBackend, redis redis.Cmdable, ttl time.Duration) *CachedRates {
	return &CachedRates{next: next, redis: redis, ttl: ttl}
}

func (c *CachedRates) GetActiveRate(ctx context.Context, key models.RateKey) (decimal.Decimal, error) {
	if c.redis == nil {
		return c.next.GetActiveRate(ctx, key)
	}

	ck := rateCacheKey(key)
	val, err := c.redis.Get(ctx, ck).Result()
	if err == nil {
		if rate, perr := decimal.NewFromString(val); perr == nil {
			observability.IncrementRateCache("hit")
			return rate, nil
		}
	} else if err != redis.Nil {
		zap.L().Warn("redis rate lookup failed", zap.Error(err), zap.String("key", ck))
	}
	observability.IncrementRateCache("miss")

	rate, err := c.next.GetActiveRate(ctx, key)
	if err != nil {
		return rate, err
	}
	if err := c.redis.Set(ctx, ck, rate.String(), c.ttl).Err(); err != nil {
		zap.L().Warn("redis rate cache set failed", zap.Error(err), zap.String("key", ck))
	}
	return rate, nil
}

func (c *CachedRates) UpsertRate(ctx context.Context, rate *models.ExchangeRate) error {
	if err := c.next.UpsertRate(ctx, rate); err != nil {
		return err
	}
	if c.redis != nil {
		if err := c.redis.Del(ctx, rateCacheKey(rate.RateKey)).Err(); err != nil {
			zap.L().Warn("redis rate cache evict failed", zap.Error(err))
		} else {
			observability.IncrementRateCache("evict")
		}
	}
	return nil
}

func (c *CachedRates) ListActiveRates(ctx context.Context) ([]models.ExchangeRate, error) {
	return c.next.ListActiveRates(ctx)
}

func rateCacheKey(key models.RateKey) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", rateCachePrefix,
		strings.ToLower(domain.NormalizeCountry(key.FromCountry)),
		strings.ToLower(domain.NormalizeCountry(key.ToCountry)),
		key.FromCurrency, key.ToCurrency)
}
