package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"TrendSentinel/internal/model"
)

// Collector applies the market-cap floor and fetches every horizon a symbol
// is evaluated on.
type Collector struct {
	Fetcher  Fetcher
	Floor    decimal.Decimal
	Horizons map[model.Interval]string // interval -> lookback
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, floor decimal.Decimal, horizons map[model.Interval]string) *Collector {
	return &Collector{Fetcher: fetcher, Floor: floor, Horizons: horizons}
}

// AboveFloor reports whether a market cap passes the floor. The floor itself
// passes; an absent market cap does not.
func AboveFloor(mc decimal.NullDecimal, floor decimal.Decimal) bool {
	return mc.Valid && mc.Decimal.GreaterThanOrEqual(floor)
}

// Collect checks the market cap and fetches the series of every horizon.
// Horizons that fail are left out; if none succeeds, or the symbol is filtered
// out, the error wraps ErrDataUnavailable.
func (c *Collector) Collect(ctx context.Context, symbol string) (map[model.Interval]model.PriceSeries, error) {
	mc, err := c.Fetcher.MarketCap(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: market cap: %v", ErrDataUnavailable, err)
	}
	if !mc.Valid {
		return nil, fmt.Errorf("%w: market cap absent", ErrDataUnavailable)
	}
	if !AboveFloor(mc, c.Floor) {
		return nil, fmt.Errorf("%w: %s < %s", ErrBelowFloor, mc.Decimal.String(), c.Floor.String())
	}

	intervals := make([]string, 0, len(c.Horizons))
	for iv := range c.Horizons {
		intervals = append(intervals, string(iv))
	}
	sort.Strings(intervals)

	out := make(map[model.Interval]model.PriceSeries, len(intervals))
	var errs []error
	for _, iv := range intervals {
		interval := model.Interval(iv)
		bars, err := c.Fetcher.FetchBars(ctx, symbol, interval, c.Horizons[interval])
		if err != nil {
			logrus.WithFields(logrus.Fields{"symbol": symbol, "interval": interval}).Warnf("fetch bars: %v", err)
			errs = append(errs, fmt.Errorf("%s: %w", interval, err))
			continue
		}
		if len(bars) == 0 {
			errs = append(errs, fmt.Errorf("%s: no bars", interval))
			continue
		}
		out[interval] = model.PriceSeries{Symbol: symbol, Interval: interval, Bars: bars}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, errors.Join(errs...))
	}
	return out, nil
}
