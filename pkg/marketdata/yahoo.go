package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// YahooConfig configures the Yahoo Finance client. The three base URLs
// default to the public endpoints and exist so tests can point the client
// at a local server.
type YahooConfig struct {
	BaseURL      string // quoteSummary API host
	ChartBaseURL string // chart API host
	QuoteBaseURL string // HTML pages, used for the holders scrape
	Timeout      time.Duration
}

// YahooClient reads the unofficial Yahoo Finance endpoints. Every numeric
// field comes wrapped in a {"raw": n} object and may be absent entirely.
type YahooClient struct {
	cfg    YahooConfig
	client *http.Client
}

func NewYahooClient(cfg YahooConfig) *YahooClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary"
	}
	if cfg.ChartBaseURL == "" {
		cfg.ChartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	if cfg.QuoteBaseURL == "" {
		cfg.QuoteBaseURL = "https://finance.yahoo.com/quote"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &YahooClient{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newLoggingTransport(nil),
		},
	}
}

func (c *YahooClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	// The endpoints reject requests without a browser-like agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type quoteSummaryEnvelope struct {
	QuoteSummary struct {
		Result []QuoteSummary `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// QuoteSummary fetches the requested modules in a single call. Modules the
// endpoint declines to return simply stay nil on the result.
func (c *YahooClient) QuoteSummary(ctx context.Context, symbol string, modules []string) (*QuoteSummary, error) {
	q := url.Values{"modules": {strings.Join(modules, ",")}}
	rawURL := c.cfg.BaseURL + "/" + url.PathEscape(symbol) + "?" + q.Encode()

	var env quoteSummaryEnvelope
	if err := c.getJSON(ctx, rawURL, &env); err != nil {
		return nil, err
	}
	if env.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quote summary error: %s", env.QuoteSummary.Error.Description)
	}
	if len(env.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("quote summary has no result for %s", symbol)
	}
	return &env.QuoteSummary.Result[0], nil
}

type chartEnvelope struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Adjclose []struct {
					Adjclose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
			Events struct {
				Dividends map[string]struct {
					Amount *float64 `json:"amount"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Chart returns the adjusted close series for the trailing window plus the
// summed dividend amounts over it. Closes are oldest first; sessions the
// exchange reported without a price stay nil in place.
func (c *YahooClient) Chart(ctx context.Context, symbol string, years int, withDividends bool) (*ChartResult, error) {
	if years <= 0 {
		years = 1
	}
	q := url.Values{
		"range":    {strconv.Itoa(years) + "y"},
		"interval": {"1d"},
	}
	if withDividends {
		q.Set("events", "div")
	}
	rawURL := c.cfg.ChartBaseURL + "/" + url.PathEscape(symbol) + "?" + q.Encode()

	var env chartEnvelope
	if err := c.getJSON(ctx, rawURL, &env); err != nil {
		return nil, err
	}
	if env.Chart.Error != nil {
		return nil, fmt.Errorf("chart error: %s", env.Chart.Error.Description)
	}
	if len(env.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart has no result for %s", symbol)
	}

	result := env.Chart.Result[0]
	var closes []*float64
	if len(result.Indicators.Adjclose) > 0 && len(result.Indicators.Adjclose[0].Adjclose) > 0 {
		closes = result.Indicators.Adjclose[0].Adjclose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}
	if len(closes) == 0 {
		return nil, fmt.Errorf("chart has no price series for %s", symbol)
	}

	out := &ChartResult{Closes: closes}
	if withDividends {
		var sum float64
		var seen bool
		for _, div := range result.Events.Dividends {
			if div.Amount != nil {
				sum += *div.Amount
				seen = true
			}
		}
		if seen {
			out.TotalDividends = &sum
		}
	}
	return out, nil
}
