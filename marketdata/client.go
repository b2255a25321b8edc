// Package marketdata fetches OHLCV series from the Twelve Data REST API
// and streams live quotes from its websocket feed.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock-sentry/logger"
)

const (
	maxAttempts   = 3
	rateLimitWait = 62 * time.Second
)

// Bar is one OHLCV bar returned by the API, in chronological context.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Client talks to the Twelve Data time_series endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	sleep   func(time.Duration) // injectable for tests
}

// NewClient creates a market data client.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		sleep:   time.Sleep,
	}
}

// apiBar mirrors the wire format: every numeric field arrives as a string.
type apiBar struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

type apiSeries struct {
	Values  []apiBar `json:"values"`
	Status  string   `json:"status"`
	Code    int      `json:"code"`
	Message string   `json:"message"`
}

// TimeSeries fetches bars for one symbol, oldest first. Rate-limit
// responses trigger a credit-window wait and retry.
func (c *Client) TimeSeries(ctx context.Context, symbol, interval string, outputSize int) ([]Bar, error) {
	series, err := c.fetch(ctx, symbol, interval, outputSize)
	if err != nil {
		return nil, err
	}
	got, ok := series[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("time_series %s: symbol missing from response", symbol)
	}
	return got, nil
}

// TimeSeriesBatch fetches several symbols in one request. Missing symbols
// are absent from the result map rather than an error, so one bad ticker
// does not sink the batch.
func (c *Client) TimeSeriesBatch(ctx context.Context, symbols []string, interval string, outputSize int) (map[string][]Bar, error) {
	if len(symbols) == 0 {
		return map[string][]Bar{}, nil
	}
	return c.fetch(ctx, strings.Join(symbols, ","), interval, outputSize)
}

func (c *Client) fetch(ctx context.Context, symbolExpr, interval string, outputSize int) (map[string][]Bar, error) {
	q := url.Values{}
	q.Set("symbol", symbolExpr)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(outputSize))
	q.Set("apikey", c.apiKey)
	endpoint := c.baseURL + "/time_series?" + q.Encode()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, retryable, err := c.fetchOnce(ctx, endpoint)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable || attempt == maxAttempts {
			break
		}
		logger.Warnw("market data rate limited, waiting for credit window",
			"symbols", symbolExpr, "attempt", attempt, "wait", rateLimitWait)
		c.sleep(rateLimitWait)
	}
	return nil, fmt.Errorf("time_series %s: %w", symbolExpr, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string) (map[string][]Bar, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("http 429: %s", strings.TrimSpace(string(body)))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return parseSeriesBody(body)
}

// parseSeriesBody handles both response shapes: a single series object for
// one symbol, and a map keyed by symbol for a batch request.
func parseSeriesBody(body []byte) (map[string][]Bar, bool, error) {
	var single apiSeries
	if err := json.Unmarshal(body, &single); err == nil && len(single.Values) > 0 {
		bars, err := normalizeBars(single.Values)
		if err != nil {
			return nil, false, err
		}
		return map[string][]Bar{symbolFromSingle(body): bars}, false, nil
	}
	if single.Status == "error" {
		retryable := single.Code == 429 || strings.Contains(strings.ToLower(single.Message), "credits") ||
			strings.Contains(strings.ToLower(single.Message), "limit")
		return nil, retryable, fmt.Errorf("api error %d: %s", single.Code, single.Message)
	}

	var multi map[string]apiSeries
	if err := json.Unmarshal(body, &multi); err != nil {
		return nil, false, fmt.Errorf("unrecognized response: %w", err)
	}
	out := make(map[string][]Bar, len(multi))
	for symbol, series := range multi {
		if series.Status == "error" || len(series.Values) == 0 {
			logger.Warnw("symbol missing from batch response", "symbol", symbol, "message", series.Message)
			continue
		}
		bars, err := normalizeBars(series.Values)
		if err != nil {
			return nil, false, fmt.Errorf("symbol %s: %w", symbol, err)
		}
		out[strings.ToUpper(symbol)] = bars
	}
	return out, false, nil
}

// symbolFromSingle pulls the symbol out of a single-series response meta
// block so the caller gets a uniformly keyed map.
func symbolFromSingle(body []byte) string {
	var envelope struct {
		Meta struct {
			Symbol string `json:"symbol"`
		} `json:"meta"`
	}
	_ = json.Unmarshal(body, &envelope)
	return strings.ToUpper(envelope.Meta.Symbol)
}

// normalizeBars parses the string-typed fields and orders bars oldest
// first regardless of the API's newest-first convention.
func normalizeBars(values []apiBar) ([]Bar, error) {
	bars := make([]Bar, 0, len(values))
	for _, v := range values {
		ts, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("bar %q: %w", v.Datetime, err)
		}
		b := Bar{Timestamp: ts}
		if b.Open, err = strconv.ParseFloat(v.Open, 64); err != nil {
			return nil, fmt.Errorf("bar %q open: %w", v.Datetime, err)
		}
		if b.High, err = strconv.ParseFloat(v.High, 64); err != nil {
			return nil, fmt.Errorf("bar %q high: %w", v.Datetime, err)
		}
		if b.Low, err = strconv.ParseFloat(v.Low, 64); err != nil {
			return nil, fmt.Errorf("bar %q low: %w", v.Datetime, err)
		}
		if b.Close, err = strconv.ParseFloat(v.Close, 64); err != nil {
			return nil, fmt.Errorf("bar %q close: %w", v.Datetime, err)
		}
		if v.Volume != "" {
			if b.Volume, err = strconv.ParseInt(v.Volume, 10, 64); err != nil {
				return nil, fmt.Errorf("bar %q volume: %w", v.Datetime, err)
			}
		}
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable datetime")
}

// Chunk splits symbols into request-sized batches.
func Chunk(symbols []string, size int) [][]string {
	if size <= 0 {
		return [][]string{symbols}
	}
	var out [][]string
	for len(symbols) > size {
		out = append(out, symbols[:size])
		symbols = symbols[size:]
	}
	if len(symbols) > 0 {
		out = append(out, symbols)
	}
	return out
}
