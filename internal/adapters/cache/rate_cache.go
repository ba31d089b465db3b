package cache

import (
	"context"
	"fmt"
	"nburates/internal/adapters"
	"nburates/internal/domain"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/shopspring/decimal"
)

// CachingRateClient keeps single-date lookups in memory for the lifetime of the process.
// Published rates never change, so entries carry no TTL. Failed lookups are not stored.
type CachingRateClient struct {
	next  adapters.RateClient
	cache *ristretto.Cache
}

func NewCachingRateClient(next adapters.RateClient, maxItems int64) (*CachingRateClient, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create rate cache failed: %w", err)
	}
	return &CachingRateClient{next: next, cache: c}, nil
}

func (c *CachingRateClient) GetRateOnDate(ctx context.Context, code string, date time.Time) (decimal.NullDecimal, error) {
	key := toKey(code, date)
	if v, ok := c.cache.Get(key); ok {
		if rate, ok := v.(decimal.NullDecimal); ok {
			return rate, nil
		}
	}

	rate, err := c.next.GetRateOnDate(ctx, code, date)
	if err != nil {
		return rate, err
	}
	c.cache.Set(key, rate, 1)
	return rate, nil
}

func (c *CachingRateClient) GetRatesForRange(ctx context.Context, code string, start, end time.Time) ([]domain.DatedRate, error) {
	return c.next.GetRatesForRange(ctx, code, start, end)
}

func (c *CachingRateClient) Close() { c.cache.Close() }

func toKey(code string, date time.Time) string { return strings.ToUpper(code) + ":" + date.Format(domain.CompactLayout) }
