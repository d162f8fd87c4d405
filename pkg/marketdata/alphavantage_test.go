package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestClient points a client at a stub server with the rate limit opened
// up so tests never wait on the quota.
func newTestClient(t *testing.T, handler http.HandlerFunc) *AlphaVantageClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAlphaVantageClient(AlphaVantageConfig{
		BaseURL:           srv.URL,
		APIKey:            "test-key",
		RequestsPerMinute: 60000,
	})
}

func TestProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "OVERVIEW" {
			t.Errorf("expected OVERVIEW function, got %q", got)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("api key not forwarded, got %q", got)
		}
		w.Write([]byte(`{"Symbol":"ACME","Name":"Acme Corp","PERatio":"21.5","Beta":"None"}`))
	})

	profile, err := client.Profile(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if profile.Symbol != "ACME" || profile.Name != "Acme Corp" {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if v := ParseNum(profile.PERatio); v == nil || *v != 21.5 {
		t.Errorf("expected PE 21.5, got %v", v)
	}
	if ParseNum(profile.Beta) != nil {
		t.Error(`"None" must parse as absent`)
	}
}

func TestProfileWithoutSymbolIsAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Name":"Mystery Co"}`))
	})
	if _, err := client.Profile(context.Background(), "ACME"); err == nil {
		t.Error("overview without a symbol should fail")
	}
}

func TestDisguisedErrorPayloads(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"rate limit note", `{"Note":"Thank you for using Alpha Vantage! Please slow down."}`},
		{"information", `{"Information":"The demo key is limited."}`},
		{"error message", `{"Error Message":"Invalid API call."}`},
		{"empty object", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})
			_, err := client.Profile(context.Background(), "ACME")
			if err == nil || !strings.Contains(err.Error(), "provider returned no data") {
				t.Errorf("expected a disguised-error failure, got %v", err)
			}
		})
	}
}

func TestDisguisedErrorRequiresLonePayloadKey(t *testing.T) {
	// A real payload that happens to carry a Note alongside data is not an
	// error.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note":"data is delayed","Symbol":"ACME","Name":"Acme Corp"}`))
	})
	if _, err := client.Profile(context.Background(), "ACME"); err != nil {
		t.Errorf("payload with data should not be treated as an error: %v", err)
	}
}

func TestCustomErrorKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Throttled":"try later"}`))
	}))
	t.Cleanup(srv.Close)
	client := NewAlphaVantageClient(AlphaVantageConfig{
		BaseURL:           srv.URL,
		RequestsPerMinute: 60000,
		ErrorKeys:         []string{"Throttled"},
	})
	_, err := client.Profile(context.Background(), "ACME")
	if err == nil || !strings.Contains(err.Error(), "try later") {
		t.Errorf("configured error key should be honored, got %v", err)
	}
}

func TestDailySeriesNewestFirst(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Time Series (Daily)":{
			"2026-01-02":{"4. close":"100.0"},
			"2026-01-06":{"4. close":"103.5"},
			"2026-01-05":{"4. close":"None"},
			"2026-01-03":{"4. close":"101.0"}}}`))
	})

	bars, err := client.DailySeries(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("daily series failed: %v", err)
	}
	// The unparseable session is dropped, the rest sort newest first.
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if bars[0].Date != "2026-01-06" || bars[0].Close != 103.5 {
		t.Errorf("newest bar should lead: %+v", bars[0])
	}
	if bars[2].Date != "2026-01-02" {
		t.Errorf("oldest bar should trail: %+v", bars[2])
	}
}

func TestDailySeriesEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Meta Data":{"2. Symbol":"ACME"}}`))
	})
	if _, err := client.DailySeries(context.Background(), "ACME"); err == nil {
		t.Error("missing series should fail")
	}
}

func TestQuarterlyIncome(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "INCOME_STATEMENT" {
			t.Errorf("expected INCOME_STATEMENT, got %q", got)
		}
		w.Write([]byte(`{"quarterlyReports":[
			{"fiscalDateEnding":"2025-12-31","totalRevenue":"1000","netIncome":"100"},
			{"fiscalDateEnding":"2025-09-30","totalRevenue":"900","netIncome":"90"}]}`))
	})

	reports, err := client.QuarterlyIncome(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("quarterly income failed: %v", err)
	}
	if len(reports) != 2 || reports[0].FiscalDateEnding != "2025-12-31" {
		t.Errorf("unexpected reports: %+v", reports)
	}
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("keywords"); got != "acme" {
			t.Errorf("expected keywords acme, got %q", got)
		}
		w.Write([]byte(`{"bestMatches":[
			{"1. symbol":"ACME","2. name":"Acme Corp","4. region":"United States"},
			{"1. symbol":"ACME.L","2. name":"Acme PLC","4. region":"United Kingdom"},
			{"2. name":"Acme Holdings"}]}`))
	})

	matches, err := client.Search(context.Background(), "acme")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].ID != "ACME-United States" {
		t.Errorf("unexpected match id %q", matches[0].ID)
	}
	if matches[1].Symbol != "ACME.L" || matches[1].Region != "United Kingdom" {
		t.Errorf("unexpected match: %+v", matches[1])
	}
	// No symbol: the name keys the suggestion, region defaults to unknown.
	if matches[2].ID != "Acme Holdings-unknown" {
		t.Errorf("unexpected fallback id %q", matches[2].ID)
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if _, err := client.Profile(context.Background(), "ACME"); err == nil {
		t.Error("non-200 status should fail")
	}
}
