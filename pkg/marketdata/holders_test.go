package marketdata

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const holdersPage = `
<html><body>
<table>
  <thead><tr><th>Date</th><th>Open</th><th>Close</th></tr></thead>
  <tbody><tr><td>2026-01-02</td><td>100</td><td>101</td></tr></tbody>
</table>
<table>
  <thead><tr><th>Holder</th><th>Shares</th><th>Date Reported</th><th>% Out</th><th>Value</th></tr></thead>
  <tbody>
    <tr><td>Vanguard Group Inc</td><td>1,000,000</td><td>2025-12-31</td><td>8.12%</td><td>$100M</td></tr>
    <tr><td>Blackrock Inc</td><td>900,000</td><td>2025-12-31</td><td>7.35%</td><td>$90M</td></tr>
    <tr><td>State Street Corp</td><td>500,000</td><td>2025-12-31</td><td>-</td><td>$50M</td></tr>
    <tr><td></td><td>1</td><td>2025-12-31</td><td>0.1%</td><td>$1</td></tr>
  </tbody>
</table>
</body></html>`

func TestParseHoldersTable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(holdersPage))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}

	holders := parseHoldersTable(doc)
	// The price table is skipped, the nameless row is dropped.
	if len(holders) != 3 {
		t.Fatalf("expected 3 holders, got %d", len(holders))
	}
	if holders[0].Name != "Vanguard Group Inc" {
		t.Errorf("unexpected first holder %q", holders[0].Name)
	}
	if holders[0].PercentHeld == nil || *holders[0].PercentHeld != 8.12 {
		t.Errorf("expected 8.12%% held, got %v", holders[0].PercentHeld)
	}
	if holders[2].PercentHeld != nil {
		t.Errorf("dash percent cell should be absent, got %v", *holders[2].PercentHeld)
	}
}

func TestParseHoldersTableNoMatch(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body><p>no tables here</p></body></html>`))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	if holders := parseHoldersTable(doc); len(holders) != 0 {
		t.Errorf("expected no holders, got %d", len(holders))
	}
}

func TestParsePercentCell(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{" 8.12% ", ptrf(8.12)},
		{"0.5%", ptrf(0.5)},
		{"12", ptrf(12)},
		{"-", nil},
		{"", nil},
		{"n/a", nil},
	}
	for _, tc := range cases {
		got := parsePercentCell(tc.in)
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("parsePercentCell(%q) = %v, want nil", tc.in, *got)
		case tc.want != nil && (got == nil || *got != *tc.want):
			t.Errorf("parsePercentCell(%q) = %v, want %v", tc.in, got, *tc.want)
		}
	}
}

func ptrf(v float64) *float64 { return &v }
