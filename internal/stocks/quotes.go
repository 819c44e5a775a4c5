package stocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Quote is the latest traded snapshot for one symbol.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume int64   `json:"volume"`
}

// Bar is one OHLC candle. Yahoo reports missing values as JSON nulls, so
// every field except the date is optional.
type Bar struct {
	Date   time.Time
	Open   *float64
	High   *float64
	Low    *float64
	Close  *float64
	Volume *int64
}

// MarketData fetches live market data. The production implementation talks to
// the Yahoo Finance chart API; tests substitute a stub.
type MarketData interface {
	LatestQuote(ctx context.Context, symbol string) (*Quote, error)
	RecentDailyBars(ctx context.Context, symbol, period string) ([]Bar, error)
	DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error)
}

// ErrNoChartData marks a well-formed chart response that carried no usable
// rows for the symbol.
var ErrNoChartData = errors.New("no chart data")

const defaultQuoteTimeout = 10 * time.Second

// Yahoo rejects requests without a browser-style agent.
const chartUserAgent = "Mozilla/5.0 (compatible; tally/1.0)"

// YahooClient reads the free v8 chart endpoint. Symbols follow Yahoo's
// conventions: AAPL for US listings, 300750.SZ / 600519.SS for mainland
// exchanges, 0700.HK for Hong Kong.
type YahooClient struct {
	baseURL string
	client  *http.Client
}

func NewYahooClient(baseURL string, client *http.Client) *YahooClient {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	if client == nil {
		client = &http.Client{Timeout: defaultQuoteTimeout}
	}
	return &YahooClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// LatestQuote reads the last traded candle. It tries minute data for the
// current session first and falls back to daily candles, which also covers
// symbols outside their trading hours.
func (c *YahooClient) LatestQuote(ctx context.Context, symbol string) (*Quote, error) {
	bars, err := c.fetchBars(ctx, symbol, rangeParams("1d", "1m"))
	if err != nil || lastTraded(bars) == nil {
		bars, err = c.fetchBars(ctx, symbol, rangeParams("5d", "1d"))
		if err != nil {
			return nil, err
		}
	}

	last := lastTraded(bars)
	if last == nil {
		return nil, ErrNoChartData
	}

	quote := &Quote{
		Symbol: symbol,
		Price:  round4(*last.Close),
		Open:   round4(deref(last.Open)),
		High:   round4(deref(last.High)),
		Low:    round4(deref(last.Low)),
	}
	if last.Volume != nil {
		quote.Volume = *last.Volume
	}
	return quote, nil
}

// RecentDailyBars reads daily candles for a relative period such as "1mo".
func (c *YahooClient) RecentDailyBars(ctx context.Context, symbol, period string) ([]Bar, error) {
	return c.fetchBars(ctx, symbol, rangeParams(period, "1d"))
}

// DailyBars reads daily candles for an absolute date window, both ends
// inclusive.
func (c *YahooClient) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	params.Set("interval", "1d")
	return c.fetchBars(ctx, symbol, params)
}

func rangeParams(period, interval string) url.Values {
	params := url.Values{}
	params.Set("range", period)
	params.Set("interval", interval)
	return params
}

func (c *YahooClient) fetchBars(ctx context.Context, symbol string, params url.Values) ([]Bar, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build chart request: %w", err)
	}
	req.Header.Set("User-Agent", chartUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch chart for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart request for %s: %s", symbol, resp.Status)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode chart for %s: %w", symbol, err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s", symbol, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, ErrNoChartData
	}

	return payload.Chart.Result[0].bars(), nil
}

// chartResponse mirrors the slice of Yahoo's v8 payload this client reads.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

func (r *chartResult) bars() []Bar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	quote := r.Indicators.Quote[0]

	bars := make([]Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		bars = append(bars, Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   floatAt(quote.Open, i),
			High:   floatAt(quote.High, i),
			Low:    floatAt(quote.Low, i),
			Close:  floatAt(quote.Close, i),
			Volume: intAt(quote.Volume, i),
		})
	}
	return bars
}

// lastTraded returns the newest bar that actually closed, or nil.
func lastTraded(bars []Bar) *Bar {
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].Close != nil {
			return &bars[i]
		}
	}
	return nil
}

func floatAt(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func intAt(values []*int64, i int) *int64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
