package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"TrendSentinel/internal/model"
)

// ErrDataUnavailable covers every per-symbol data failure: fetch errors,
// missing bars and absent market cap. Callers treat it as "no signal".
var ErrDataUnavailable = errors.New("data unavailable")

// ErrBelowFloor is returned for symbols whose market cap is under the floor.
var ErrBelowFloor = fmt.Errorf("market cap below floor: %w", ErrDataUnavailable)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchBars returns bars oldest first. lookback is a range such as "15y".
	FetchBars(ctx context.Context, symbol string, interval model.Interval, lookback string) ([]model.OHLCV, error)
	// MarketCap returns an invalid NullDecimal when the provider has no value.
	MarketCap(ctx context.Context, symbol string) (decimal.NullDecimal, error)
	Name() string
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
