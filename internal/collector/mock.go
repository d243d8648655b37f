package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"TrendSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars       map[string]map[model.Interval][]model.OHLCV
	MarketCaps map[string]decimal.NullDecimal
	Errors     map[string]error
	Calls      int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, symbol string, interval model.Interval, _ string) ([]model.OHLCV, error) {
	m.Calls++
	if err := m.Errors[symbol]; err != nil {
		return nil, err
	}
	bars, ok := m.Bars[symbol][interval]
	if !ok {
		return nil, fmt.Errorf("mock: no %s bars for %s", interval, symbol)
	}
	return bars, nil
}

func (m *MockFetcher) MarketCap(_ context.Context, symbol string) (decimal.NullDecimal, error) {
	if err := m.Errors[symbol]; err != nil {
		return decimal.NullDecimal{}, err
	}
	return m.MarketCaps[symbol], nil
}

// BarsFromCloses builds monthly-spaced bars from close prices, ending now.
func BarsFromCloses(closes []float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	now := time.Now()
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   now.AddDate(0, -(len(closes) - i), 0),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000000,
		}
	}
	return bars
}
