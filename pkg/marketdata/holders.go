package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MajorHolders scrapes the top institutional holders table from the quote
// page. The page layout shifts occasionally, so the parse is defensive:
// any row it cannot read is skipped rather than failing the whole scrape.
func (c *YahooClient) MajorHolders(ctx context.Context, symbol string) ([]Holder, error) {
	rawURL := c.cfg.QuoteBaseURL + "/" + symbol + "/holders"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse holders page: %w", err)
	}
	return parseHoldersTable(doc), nil
}

// parseHoldersTable picks the table whose header mentions a holder column
// and reads name plus percent held from each data row.
func parseHoldersTable(doc *goquery.Document) []Holder {
	var holders []Holder
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		header := strings.ToLower(table.Find("thead").Text())
		if !strings.Contains(header, "holder") {
			return true
		}
		pctCol := holderPercentColumn(table)
		table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() <= pctCol {
				return
			}
			name := strings.TrimSpace(cells.First().Text())
			if name == "" {
				return
			}
			holders = append(holders, Holder{
				Name:        name,
				PercentHeld: parsePercentCell(cells.Eq(pctCol).Text()),
			})
		})
		return false
	})
	return holders
}

func holderPercentColumn(table *goquery.Selection) int {
	col := 2
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		text := strings.ToLower(th.Text())
		if strings.Contains(text, "% out") || strings.Contains(text, "percent") {
			col = i
		}
	})
	return col
}

func parsePercentCell(s string) *float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
