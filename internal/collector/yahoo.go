package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"TrendSentinel/internal/model"
)

const (
	yahooBaseURL   = "https://query1.finance.yahoo.com"
	yahooCookieURL = "https://fc.yahoo.com"
)

// errYahooUnauthorized marks a 401, after which the crumb is refreshed once.
var errYahooUnauthorized = errors.New("yahoo: unauthorized")

// YahooFetcher implements Fetcher using Yahoo Finance public API. The quote
// endpoint needs a session cookie and a matching crumb.
type YahooFetcher struct {
	BaseURL   string
	CookieURL string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	limiter   *rate.Limiter

	mu    sync.Mutex
	crumb string
}

// NewYahooFetcher creates a new Yahoo Finance fetcher. requestsPerSecond <= 0
// disables rate limiting.
func NewYahooFetcher(proxyURL string, timeout time.Duration, requestsPerSecond float64) *YahooFetcher {
	f := &YahooFetcher{
		BaseURL:   yahooBaseURL,
		CookieURL: yahooCookieURL,
		Client:    newHTTPClient(proxyURL, timeout),
		SymbolMap: map[string]string{
			"NIFTY50": "^NSEI",
			"SENSEX":  "^BSESN",
		},
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	if requestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	if jar, err := cookiejar.New(nil); err == nil {
		f.Client.Jar = jar
	}
	return f
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

// yahooQuote is the response structure from Yahoo Finance quote API.
type yahooQuote struct {
	QuoteResponse struct {
		Result []struct {
			Symbol    string              `json:"symbol"`
			MarketCap decimal.NullDecimal `json:"marketCap"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteResponse"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

func (f *YahooFetcher) fetch(ctx context.Context, u string) (int, []byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("yahoo rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("yahoo read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (f *YahooFetcher) get(ctx context.Context, u string, out interface{}) error {
	status, body, err := f.fetch(ctx, u)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", errYahooUnauthorized, string(body))
	}
	if status != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", status, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

// sessionCrumb returns the cached crumb, or performs the cookie + getcrumb
// handshake. The cookie page answers 404 but still sets the session cookie.
func (f *YahooFetcher) sessionCrumb(ctx context.Context, refresh bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.crumb != "" && !refresh {
		return f.crumb, nil
	}
	f.crumb = ""

	if _, _, err := f.fetch(ctx, f.CookieURL); err != nil {
		return "", fmt.Errorf("yahoo session cookie: %w", err)
	}
	status, body, err := f.fetch(ctx, f.BaseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("yahoo crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if status != http.StatusOK || crumb == "" || strings.HasPrefix(crumb, "{") {
		return "", fmt.Errorf("yahoo crumb: status %d, body: %s", status, crumb)
	}
	f.crumb = crumb
	return crumb, nil
}

// FetchBars returns the chart bars for interval over the lookback range.
func (f *YahooFetcher) FetchBars(ctx context.Context, symbol string, interval model.Interval, lookback string) ([]model.OHLCV, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), url.QueryEscape(string(interval)), url.QueryEscape(lookback))

	var chart yahooChart
	if err := f.get(ctx, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  *quote.Close[i],
			Volume: at(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// MarketCap returns the quote's market capitalization, invalid when Yahoo has
// none. A rejected crumb is refreshed once.
func (f *YahooFetcher) MarketCap(ctx context.Context, symbol string) (decimal.NullDecimal, error) {
	q, err := f.quote(ctx, symbol, false)
	if errors.Is(err, errYahooUnauthorized) {
		q, err = f.quote(ctx, symbol, true)
	}
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if q.QuoteResponse.Error != nil {
		return decimal.NullDecimal{}, fmt.Errorf("yahoo api error: %s", q.QuoteResponse.Error.Description)
	}
	if len(q.QuoteResponse.Result) == 0 {
		return decimal.NullDecimal{}, nil
	}
	return q.QuoteResponse.Result[0].MarketCap, nil
}

func (f *YahooFetcher) quote(ctx context.Context, symbol string, refresh bool) (*yahooQuote, error) {
	crumb, err := f.sessionCrumb(ctx, refresh)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s&crumb=%s",
		f.BaseURL, url.QueryEscape(f.yahooSymbol(symbol)), url.QueryEscape(crumb))

	var q yahooQuote
	if err := f.get(ctx, u, &q); err != nil {
		return nil, err
	}
	return &q, nil
}
