package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"TrendSentinel/internal/model"
)

// CachingFetcher decorates a Fetcher with a Redis read-through cache. A nil
// client bypasses the cache.
type CachingFetcher struct {
	inner     Fetcher
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingFetcher wraps inner. If ttl is 0 it defaults to 12 hours; if
// namespace is empty it uses "bars".
func NewCachingFetcher(rdb *redis.Client, ttl time.Duration, inner Fetcher, namespace string) *CachingFetcher {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if namespace == "" {
		namespace = "bars"
	}
	return &CachingFetcher{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace}
}

func (c *CachingFetcher) Name() string { return c.inner.Name() + "+redis" }

func (c *CachingFetcher) FetchBars(ctx context.Context, symbol string, interval model.Interval, lookback string) ([]model.OHLCV, error) {
	if c.rdb == nil {
		return c.inner.FetchBars(ctx, symbol, interval, lookback)
	}
	key := c.key("bars", symbol, string(interval), lookback)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []model.OHLCV
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.FetchBars(ctx, symbol, interval, lookback)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			logrus.WithField("symbol", symbol).Debugf("cache set: %v", err)
		}
	}
	return out, nil
}

func (c *CachingFetcher) MarketCap(ctx context.Context, symbol string) (decimal.NullDecimal, error) {
	if c.rdb == nil {
		return c.inner.MarketCap(ctx, symbol)
	}
	key := c.key("mcap", symbol)

	if s, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if s == "" {
			return decimal.NullDecimal{}, nil
		}
		if d, err := decimal.NewFromString(s); err == nil {
			return decimal.NewNullDecimal(d), nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	mc, err := c.inner.MarketCap(ctx, symbol)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	val := ""
	if mc.Valid {
		val = mc.Decimal.String()
	}
	if err := c.rdb.Set(ctx, key, val, c.ttl).Err(); err != nil {
		logrus.WithField("symbol", symbol).Debugf("cache set: %v", err)
	}
	return mc, nil
}

func (c *CachingFetcher) key(kind string, parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = safe(p)
	}
	return fmt.Sprintf("%s:%s:%s", c.namespace, kind, strings.Join(escaped, ":"))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
