package report

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"equity_research/pkg/llm"
	"equity_research/pkg/marketdata"
	"equity_research/pkg/model"
	"equity_research/pkg/quant"
)

type mockGateway struct {
	quote *marketdata.QuoteSummary
}

func (g *mockGateway) Profile(ctx context.Context, symbol string) (*marketdata.CompanyProfile, error) {
	return &marketdata.CompanyProfile{Symbol: symbol, Name: "Acme Corp"}, nil
}

func (g *mockGateway) DailySeries(ctx context.Context, symbol string) ([]marketdata.DailyBar, error) {
	return []marketdata.DailyBar{
		{Date: "2026-02-02", Close: 110},
		{Date: "2026-01-02", Close: 100},
	}, nil
}

func (g *mockGateway) QuarterlyIncome(ctx context.Context, symbol string) ([]marketdata.QuarterlyReport, error) {
	return []marketdata.QuarterlyReport{{FiscalDateEnding: "2025-12-31", TotalRevenue: "100", NetIncome: "10"}}, nil
}

func (g *mockGateway) QuarterlyBalance(ctx context.Context, symbol string) ([]marketdata.QuarterlyReport, error) {
	return nil, nil
}

func (g *mockGateway) QuarterlyCashFlow(ctx context.Context, symbol string) ([]marketdata.QuarterlyReport, error) {
	return nil, nil
}

func (g *mockGateway) Search(ctx context.Context, query string) ([]marketdata.SearchMatch, error) {
	return nil, nil
}

func (g *mockGateway) QuoteSummary(ctx context.Context, symbol string, modules []string) (*marketdata.QuoteSummary, error) {
	return g.quote, nil
}

func (g *mockGateway) Chart(ctx context.Context, symbol string, years int, withDividends bool) (*marketdata.ChartResult, error) {
	return nil, nil
}

func (g *mockGateway) MajorHolders(ctx context.Context, symbol string) ([]marketdata.Holder, error) {
	return nil, nil
}

// fakeProvider routes each prompt to a canned response by the JSON keys the
// instructions name. failOn makes one section's call fail.
type fakeProvider struct {
	mu     sync.Mutex
	calls  int
	failOn string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	responses := []struct {
		token string
		body  string
	}{
		{`"fiftyTwoWeekPerformance"`, overviewJSON},
		{`"majorShareholders"`, shareholderJSON},
		{`"consensusRows"`, analystJSON},
		{`"keyTakeaway"`, valuationJSON},
		{`"capitalPositionAnalysis"`, statementsJSON},
		{`"positives"`, executiveJSON},
	}
	for _, r := range responses {
		if strings.Contains(userPrompt, r.token) {
			if p.failOn != "" && r.token == p.failOn {
				return "", errors.New("model unavailable")
			}
			return r.body, nil
		}
	}
	return "", errors.New("unrecognized prompt")
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

const (
	executiveJSON = `{"summary":"A steady compounder.","positives":"Strong cash generation.","risks":"Customer concentration."}`
	overviewJSON  = `{"fiftyTwoWeekPerformance":"The stock ground higher all year.","stockMetrics":[
		{"name":"Market Cap","value":"1.0B","note":"n"},{"name":"P/E (TTM)","value":"20","note":"n"},
		{"name":"Forward P/E","value":"18","note":"n"},{"name":"Price/Book","value":"3","note":"n"},
		{"name":"Beta","value":"1.1","note":"n"},{"name":"Dividend Yield","value":"1%","note":"n"},
		{"name":"52-Week Range","value":"90-110","note":"n"},{"name":"Average Volume","value":"1M","note":"n"}]}`
	shareholderJSON = `{"totalShares":"10M","shareCapitalNotes":"Single share class.",
		"keyInsiderObservations":["No notable insider activity."],
		"majorShareholders":[{"shareholderType":"Insiders","ownership":"5%","notes":""},
		{"shareholderType":"Institutions","ownership":"70%","notes":""},
		{"shareholderType":"Retail","ownership":"25%","notes":""}]}`
	analystJSON = `{"recentAnalystViews":["Coverage is constructive."],
		"consensusRows":[{"rating":"Strong Buy","count":"5","percentageOfTotal":"25%","trend":"FLAT"},
		{"rating":"Buy","count":"10","percentageOfTotal":"50%","trend":"UP"},
		{"rating":"Hold","count":"4","percentageOfTotal":"20%","trend":"FLAT"},
		{"rating":"Sell","count":"1","percentageOfTotal":"5%","trend":"DOWN"}],
		"consensusDetails":[{"name":"Consensus Rating","value":"Buy"},
		{"name":"Price Target (Mean)","value":"$120.00"},{"name":"Price Target (High)","value":"$140.00"},
		{"name":"Price Target (Low)","value":"$100.00"},{"name":"Analyst Count","value":"20"}]}`
	valuationJSON = `{"keyTakeaway":"Shares look modestly undervalued.",
		"assumptions":[{"modelName":"WACC","assumption":"8.5%"},
		{"modelName":"Terminal Growth","assumption":"4%"},
		{"modelName":"Revenue Growth","assumption":"12%"},
		{"modelName":"Forecast Horizon","assumption":"5 years"}]}`
	statementsJSON = `{"keyObservations":["Revenue grew."],"capitalPositionAnalysis":["Low leverage."],
		"fcfQualityAnalysis":["Solid conversion."],"valuationObservations":["Reasonable multiple."]}`
)

// mockStore keeps the report in memory, one company per symbol.
type mockStore struct {
	mu      sync.Mutex
	company *model.Company
}

func (s *mockStore) UpsertCompany(ctx context.Context, symbol string, name *string) (*model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.company == nil {
		s.company = &model.Company{ID: 1, Symbol: symbol}
	}
	if name != nil {
		s.company.CompanyName = name
	}
	return &model.Company{ID: s.company.ID, Symbol: s.company.Symbol}, nil
}

func (s *mockStore) GetCompanyReport(ctx context.Context, symbol string) (*model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.company == nil {
		return nil, nil
	}
	clone := *s.company
	return &clone, nil
}

func (s *mockStore) SaveExecutiveSummary(ctx context.Context, sec *model.ExecutiveSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.company.ExecutiveSummary = sec
	return nil
}

func (s *mockStore) SaveOverview(ctx context.Context, sec *model.OverviewAndStockMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.company.Overview = sec
	return nil
}

func (s *mockStore) SaveShareholderStructure(ctx context.Context, sec *model.ShareholderStructure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.company.ShareholderStructure = sec
	return nil
}

func (s *mockStore) SaveAnalystRecommendation(ctx context.Context, sec *model.AnalystRecommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.company.AnalystRecommendation = sec
	return nil
}

func (s *mockStore) SaveEquityValuation(ctx context.Context, sec *model.EquityValuation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.company.EquityValuation = sec
	return nil
}

func (s *mockStore) SaveFinancialStatementAnalysis(ctx context.Context, sec *model.FinancialStatementAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.company.FinancialStatementAnalysis = sec
	return nil
}

func testQuote() *marketdata.QuoteSummary {
	price := 100.0
	cap := 1e9
	shares := 1e7
	fcf := 5e7
	rec := "buy"
	return &marketdata.QuoteSummary{
		Price: &marketdata.PriceModule{
			RegularMarketPrice: &marketdata.Num{Raw: &price},
			MarketCap:          &marketdata.Num{Raw: &cap},
		},
		DefaultKeyStatistics: &marketdata.KeyStatisticsModule{
			SharesOutstanding: &marketdata.Num{Raw: &shares},
		},
		FinancialData: &marketdata.FinancialDataModule{
			FreeCashflow:      &marketdata.Num{Raw: &fcf},
			RecommendationKey: &rec,
		},
	}
}

func testParams() quant.ValuationParams {
	return quant.ValuationParams{
		RiskFreeRate:      0.07,
		MarketRiskPremium: 0.06,
		CostOfDebt:        0.09,
		TaxRate:           0.25,
		TerminalGrowth:    0.04,
		WACCFallback:      0.085,
		RevenueGrowth:     0.12,
		ForecastYears:     5,
	}
}

func TestBuildAllSections(t *testing.T) {
	provider := &fakeProvider{}
	store := &mockStore{}
	o := NewOrchestrator(&mockGateway{quote: testQuote()}, llm.NewGenerator(provider, 0), store, testParams())

	result, err := o.Build(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(result.Outcomes) != 6 {
		t.Fatalf("expected 6 outcomes, got %d", len(result.Outcomes))
	}
	for _, outcome := range result.Outcomes {
		if outcome.State != StatePersisted {
			t.Errorf("section %s: expected PERSISTED, got %s (%s)", outcome.Section, outcome.State, outcome.Error)
		}
	}
	if !result.Complete() {
		t.Error("result should be complete")
	}
	if provider.callCount() != 6 {
		t.Errorf("expected 6 model calls, got %d", provider.callCount())
	}
	if result.Company == nil || result.Company.EquityValuation == nil {
		t.Fatal("persisted report should come back on the result")
	}
	if result.Company.EquityValuation.DcfBuildup == nil {
		t.Error("valuation section should carry the DCF buildup")
	}
}

func TestBuildServesCachedSections(t *testing.T) {
	provider := &fakeProvider{}
	store := &mockStore{}
	o := NewOrchestrator(&mockGateway{quote: testQuote()}, llm.NewGenerator(provider, 0), store, testParams())

	if _, err := o.Build(context.Background(), "ACME"); err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	firstCalls := provider.callCount()

	result, err := o.Build(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("second build failed: %v", err)
	}
	for _, outcome := range result.Outcomes {
		if outcome.State != StateCached {
			t.Errorf("section %s: expected CACHED, got %s", outcome.Section, outcome.State)
		}
	}
	if provider.callCount() != firstCalls {
		t.Errorf("cached build made %d extra model calls", provider.callCount()-firstCalls)
	}
	if !result.Complete() {
		t.Error("cached result should be complete")
	}
}

func TestBuildSectionFailureIsIsolated(t *testing.T) {
	provider := &fakeProvider{failOn: `"keyTakeaway"`}
	store := &mockStore{}
	o := NewOrchestrator(&mockGateway{quote: testQuote()}, llm.NewGenerator(provider, 0), store, testParams())

	result, err := o.Build(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	states := make(map[string]SectionState)
	for _, outcome := range result.Outcomes {
		states[outcome.Section] = outcome.State
	}
	if states[SectionEquityValuation] != StateFailed {
		t.Errorf("valuation should have failed, got %s", states[SectionEquityValuation])
	}
	for _, name := range AllSections() {
		if name == SectionEquityValuation {
			continue
		}
		if states[name] != StatePersisted {
			t.Errorf("section %s should have persisted despite the valuation failure, got %s", name, states[name])
		}
	}
	if result.Complete() {
		t.Error("a failed section must leave the result incomplete")
	}
	if result.Company.EquityValuation != nil {
		t.Error("failed section must not be persisted")
	}

	// A rebuild regenerates only the failed section.
	provider.failOn = ""
	before := provider.callCount()
	result, err = o.Build(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if got := provider.callCount() - before; got != 1 {
		t.Errorf("rebuild should make exactly 1 model call, made %d", got)
	}
	if !result.Complete() {
		t.Error("rebuild should complete the report")
	}
}
