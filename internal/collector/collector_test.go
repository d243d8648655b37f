package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/model"
)

func nd(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }

func TestAboveFloor(t *testing.T) {
	floor := decimal.NewFromInt(50_000_000_000)
	tests := []struct {
		name string
		mc   decimal.NullDecimal
		want bool
	}{
		{"exactly at floor", nd(50_000_000_000), true},
		{"above floor", nd(50_000_000_001), true},
		{"strictly below", nd(49_999_999_999), false},
		{"absent", decimal.NullDecimal{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AboveFloor(tt.mc, floor))
		})
	}
}

func newMock() *MockFetcher {
	bars := BarsFromCloses([]float64{1, 2, 3})
	return &MockFetcher{
		Bars: map[string]map[model.Interval][]model.OHLCV{
			"BIG.NS": {
				model.IntervalMonthly: bars,
				model.IntervalWeekly:  bars,
			},
			"HALF.NS": {
				model.IntervalMonthly: bars,
			},
			"SMALL.NS": {
				model.IntervalMonthly: bars,
			},
		},
		MarketCaps: map[string]decimal.NullDecimal{
			"BIG.NS":   nd(100),
			"HALF.NS":  nd(100),
			"SMALL.NS": nd(99),
		},
		Errors: map[string]error{"BROKEN.NS": errors.New("network down")},
	}
}

func TestCollector_Collect(t *testing.T) {
	horizons := map[model.Interval]string{model.IntervalMonthly: "15y", model.IntervalWeekly: "5y"}
	ctx := context.Background()

	t.Run("all horizons", func(t *testing.T) {
		c := NewCollector(newMock(), decimal.NewFromInt(100), horizons)
		series, err := c.Collect(ctx, "BIG.NS")
		require.NoError(t, err)
		require.Len(t, series, 2)
		assert.Equal(t, "BIG.NS", series[model.IntervalWeekly].Symbol)
		assert.Equal(t, 3, series[model.IntervalMonthly].Len())
	})

	t.Run("partial horizons", func(t *testing.T) {
		c := NewCollector(newMock(), decimal.NewFromInt(100), horizons)
		series, err := c.Collect(ctx, "HALF.NS")
		require.NoError(t, err)
		assert.Len(t, series, 1)
	})

	t.Run("below floor skips fetching", func(t *testing.T) {
		m := newMock()
		c := NewCollector(m, decimal.NewFromInt(100), horizons)
		_, err := c.Collect(ctx, "SMALL.NS")
		assert.ErrorIs(t, err, ErrBelowFloor)
		assert.ErrorIs(t, err, ErrDataUnavailable)
		assert.Zero(t, m.Calls)
	})

	t.Run("absent market cap", func(t *testing.T) {
		m := newMock()
		c := NewCollector(m, decimal.NewFromInt(100), horizons)
		_, err := c.Collect(ctx, "UNKNOWN.NS")
		assert.ErrorIs(t, err, ErrDataUnavailable)
		assert.NotErrorIs(t, err, ErrBelowFloor)
		assert.Zero(t, m.Calls)
	})

	t.Run("fetch failure", func(t *testing.T) {
		c := NewCollector(newMock(), decimal.Zero, horizons)
		_, err := c.Collect(ctx, "BROKEN.NS")
		assert.ErrorIs(t, err, ErrDataUnavailable)
	})
}
