package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRates struct {
	rates map[models.RateKey]decimal.Decimal
	gets  int
}

func (c *countingRates) GetActiveRate(_ context.Context, key models.RateKey) (decimal.Decimal, error) {
	c.gets++
	r, ok := c.rates[key]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	return r, nil
}

func (c *countingRates) UpsertRate(_ context.Context, rate *models.ExchangeRate) error {
	c.rates[rate.RateKey] = rate.Rate
	return nil
}

func (c *countingRates) ListActiveRates(context.Context) ([]models.ExchangeRate, error) {
	return nil, nil
}

func TestCachedRates_WithoutRedisPassesThrough(t *testing.T) {
	key := models.RateKey{FromCountry: "Egypt", ToCountry: "USA", FromCurrency: "EGP", ToCurrency: "USD"}
	backend := &countingRates{rates: map[models.RateKey]decimal.Decimal{key: decimal.RequireFromString("0.032")}}
	cache := NewCachedRates(backend, nil, time.Minute)

	for i := 0; i < 3; i++ {
		rate, err := cache.GetActiveRate(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, "0.032", rate.String())
	}
	assert.Equal(t, 3, backend.gets)
}

func TestCachedRates_Redis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	ctx := context.Background()
	key := models.RateKey{FromCountry: "Sudan", ToCountry: "Gulf", FromCurrency: "SDG", ToCurrency: "AED"}
	require.NoError(t, client.Del(ctx, rateCacheKey(key)).Err())

	backend := &countingRates{rates: map[models.RateKey]decimal.Decimal{key: decimal.RequireFromString("0.0061")}}
	cache := NewCachedRates(backend, client, time.Minute)

	_, err = cache.GetActiveRate(ctx, key)
	require.NoError(t, err)
	_, err = cache.GetActiveRate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.gets)

	require.NoError(t, cache.UpsertRate(ctx, &models.ExchangeRate{RateKey: key, Rate: decimal.RequireFromString("0.0065"), Active: true}))
	rate, err := cache.GetActiveRate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "0.0065", rate.String())
	assert.Equal(t, 2, backend.gets)
}
