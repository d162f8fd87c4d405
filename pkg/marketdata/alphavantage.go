package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

// AlphaVantageConfig configures the Alpha Vantage client. ErrorKeys is the
// configurable set of top-level payload keys that mark a disguised error
// (the API reports throttling inside a 200 response body).
type AlphaVantageConfig struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
	ErrorKeys         []string
}

// AlphaVantageClient talks to the Alpha Vantage query API. All requests
// share a rate limiter sized to the account quota.
type AlphaVantageClient struct {
	cfg       AlphaVantageConfig
	client    *http.Client
	limiter   *rate.Limiter
	errorKeys []string
}

func NewAlphaVantageClient(cfg AlphaVantageConfig) *AlphaVantageClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 5
	}
	keys := cfg.ErrorKeys
	if len(keys) == 0 {
		keys = []string{"Note", "Information", "Error Message"}
	}
	return &AlphaVantageClient{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newLoggingTransport(nil),
		},
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		errorKeys: keys,
	}
}

// fetch performs one query call and returns the raw JSON object, or an
// error when the payload is a disguised throttling/error notice.
func (c *AlphaVantageClient) fetch(ctx context.Context, params url.Values) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("apikey", c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if msg := c.disguisedError(raw); msg != "" {
		return nil, fmt.Errorf("provider returned no data: %s", msg)
	}
	return raw, nil
}

// disguisedError inspects the payload shape, not the status code: a body
// carrying one of the configured marker keys and nothing else usable is an
// error payload.
func (c *AlphaVantageClient) disguisedError(raw json.RawMessage) string {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "unparseable payload"
	}
	if len(probe) == 0 {
		return "empty payload"
	}
	for _, key := range c.errorKeys {
		if v, ok := probe[key]; ok && len(probe) == 1 {
			var msg string
			json.Unmarshal(v, &msg)
			return msg
		}
	}
	return ""
}

// Profile returns the company OVERVIEW snapshot.
func (c *AlphaVantageClient) Profile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	params := url.Values{"function": {"OVERVIEW"}, "symbol": {symbol}}
	raw, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	var profile CompanyProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse overview: %w", err)
	}
	if profile.Symbol == "" {
		return nil, fmt.Errorf("overview has no symbol field")
	}
	return &profile, nil
}

type dailySeriesResponse struct {
	Series map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
}

// DailySeries returns the adjusted daily closes, newest first.
func (c *AlphaVantageClient) DailySeries(ctx context.Context, symbol string) ([]DailyBar, error) {
	params := url.Values{
		"function":   {"TIME_SERIES_DAILY"},
		"symbol":     {symbol},
		"outputsize": {"compact"},
	}
	raw, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	var resp dailySeriesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse daily series: %w", err)
	}
	if len(resp.Series) == 0 {
		return nil, fmt.Errorf("daily series is empty")
	}

	bars := make([]DailyBar, 0, len(resp.Series))
	for date, entry := range resp.Series {
		if v := ParseNum(entry.Close); v != nil {
			bars = append(bars, DailyBar{Date: date, Close: *v})
		}
	}
	// Dates are ISO formatted, so a lexical sort is a chronological sort.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date > bars[j].Date })
	return bars, nil
}

type statementResponse struct {
	QuarterlyReports []QuarterlyReport `json:"quarterlyReports"`
}

func (c *AlphaVantageClient) quarterlyReports(ctx context.Context, function, symbol string) ([]QuarterlyReport, error) {
	params := url.Values{"function": {function}, "symbol": {symbol}}
	raw, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	var resp statementResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", function, err)
	}
	if len(resp.QuarterlyReports) == 0 {
		return nil, fmt.Errorf("%s has no quarterly reports", function)
	}
	return resp.QuarterlyReports, nil
}

func (c *AlphaVantageClient) QuarterlyIncome(ctx context.Context, symbol string) ([]QuarterlyReport, error) {
	return c.quarterlyReports(ctx, "INCOME_STATEMENT", symbol)
}

func (c *AlphaVantageClient) QuarterlyBalance(ctx context.Context, symbol string) ([]QuarterlyReport, error) {
	return c.quarterlyReports(ctx, "BALANCE_SHEET", symbol)
}

func (c *AlphaVantageClient) QuarterlyCashFlow(ctx context.Context, symbol string) ([]QuarterlyReport, error) {
	return c.quarterlyReports(ctx, "CASH_FLOW", symbol)
}

type symbolSearchResponse struct {
	BestMatches []map[string]string `json:"bestMatches"`
}

// Search maps SYMBOL_SEARCH best matches to suggestions.
func (c *AlphaVantageClient) Search(ctx context.Context, query string) ([]SearchMatch, error) {
	params := url.Values{"function": {"SYMBOL_SEARCH"}, "keywords": {query}}
	raw, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	var resp symbolSearchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse symbol search: %w", err)
	}

	matches := make([]SearchMatch, 0, len(resp.BestMatches))
	for _, m := range resp.BestMatches {
		symbol := m["1. symbol"]
		name := m["2. name"]
		region := m["4. region"]
		id := symbol
		if id == "" {
			id = name
		}
		if region != "" {
			id = id + "-" + region
		} else {
			id = id + "-unknown"
		}
		matches = append(matches, SearchMatch{ID: id, Symbol: symbol, Name: name, Region: region})
	}
	return matches, nil
}
