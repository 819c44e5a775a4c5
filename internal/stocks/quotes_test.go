package stocks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartPayload(timestamps []int64, opens, highs, lows, closes, volumes string) string {
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"meta": {"currency": "USD"},
				"timestamp": %s,
				"indicators": {"quote": [{
					"open": %s,
					"high": %s,
					"low": %s,
					"close": %s,
					"volume": %s
				}]}
			}],
			"error": null
		}
	}`, jsonArray(timestamps), opens, highs, lows, closes, volumes)
}

func jsonArray(values []int64) string {
	out := "["
	for i, v := range values {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%d", v)
	}
	return out + "]"
}

func TestLatestQuoteUsesNewestClosedCandle(t *testing.T) {
	var gotPath, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		require.Equal(t, "1d", r.URL.Query().Get("range"))
		require.Equal(t, "1m", r.URL.Query().Get("interval"))

		// the newest candle is still forming, so its close is null
		fmt.Fprint(w, chartPayload(
			[]int64{1755993600, 1755993660, 1755993720},
			`[186.5, 187.0, null]`,
			`[187.2, 187.3, null]`,
			`[186.4, 186.9, null]`,
			`[187.01, 187.123456, null]`,
			`[1200, 3400, null]`,
		))
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, server.Client())
	quote, err := client.LatestQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
	assert.Equal(t, chartUserAgent, gotAgent)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 187.1235, quote.Price, "prices round to four decimals")
	assert.Equal(t, 187.0, quote.Open)
	assert.Equal(t, 187.3, quote.High)
	assert.Equal(t, 186.9, quote.Low)
	assert.Equal(t, int64(3400), quote.Volume)
}

func TestLatestQuoteFallsBackToDailyCandles(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.Query().Get("interval"))
		if r.URL.Query().Get("interval") == "1m" {
			// nothing traded yet today
			fmt.Fprint(w, chartPayload(
				[]int64{1755993600},
				`[null]`, `[null]`, `[null]`, `[null]`, `[null]`,
			))
			return
		}
		require.Equal(t, "5d", r.URL.Query().Get("range"))
		fmt.Fprint(w, chartPayload(
			[]int64{1755907200},
			`[41.8]`, `[42.9]`, `[41.5]`, `[42.5]`, `[99000]`,
		))
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, server.Client())
	quote, err := client.LatestQuote(context.Background(), "0700.HK")
	require.NoError(t, err)

	assert.Equal(t, []string{"1m", "1d"}, requests)
	assert.Equal(t, 42.5, quote.Price)
}

func TestRecentDailyBars(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "1mo", r.URL.Query().Get("range"))
		require.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprint(w, chartPayload(
			[]int64{1755648000, 1755734400},
			`[10.1, null]`,
			`[10.8, null]`,
			`[10.0, null]`,
			`[10.5, null]`,
			`[500, null]`,
		))
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, server.Client())
	bars, err := client.RecentDailyBars(context.Background(), "300750.SZ", "1mo")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Unix(1755648000, 0).UTC(), bars[0].Date)
	require.NotNil(t, bars[0].Close)
	assert.Equal(t, 10.5, *bars[0].Close)
	assert.Nil(t, bars[1].Close, "suspended days stay null")
}

func TestDailyBarsWindow(t *testing.T) {
	start := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fmt.Sprint(start.Unix()), r.URL.Query().Get("period1"))
		// period2 is exclusive upstream, so the window extends one day
		assert.Equal(t, fmt.Sprint(end.AddDate(0, 0, 1).Unix()), r.URL.Query().Get("period2"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprint(w, chartPayload(
			[]int64{start.Unix()},
			`[54.0]`, `[55.5]`, `[53.9]`, `[55.0]`, `[800]`,
		))
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, server.Client())
	bars, err := client.DailyBars(context.Background(), "AAPL", start, end)
	require.NoError(t, err)
	require.Len(t, bars, 1)
}

func TestFetchBarsChartError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}}}`)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, server.Client())
	_, err := client.RecentDailyBars(context.Background(), "NOPE", "1mo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestFetchBarsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": [], "error": null}}`)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, server.Client())
	_, err := client.RecentDailyBars(context.Background(), "AAPL", "1mo")
	assert.ErrorIs(t, err, ErrNoChartData)
}

func TestFetchBarsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, server.Client())
	_, err := client.DailyBars(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
