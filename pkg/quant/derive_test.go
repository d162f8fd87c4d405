package quant

import (
	"testing"

	"equity_research/pkg/marketdata"
)

func sp(s string) *string { return &s }

func num(v float64) *marketdata.Num { return &marketdata.Num{Raw: &v} }

func TestYTDReturn(t *testing.T) {
	bars := []marketdata.DailyBar{
		{Date: "2026-03-10", Close: 110},
		{Date: "2026-02-02", Close: 105},
		{Date: "2026-01-02", Close: 100},
		{Date: "2025-12-30", Close: 95},
	}
	v := YTDReturn(bars)
	if v == nil || !almostEqual(*v, 10) {
		t.Fatalf("expected YTD 10%%, got %v", v)
	}

	if YTDReturn(nil) != nil {
		t.Error("no bars must yield nil")
	}
	// Only one session this year: no baseline to compare against.
	single := []marketdata.DailyBar{{Date: "2026-01-02", Close: 100}}
	if YTDReturn(single) != nil {
		t.Error("single session must yield nil")
	}
}

func TestDeriveOverviewFallbacks(t *testing.T) {
	profile := &marketdata.CompanyProfile{
		Symbol:    "ACME",
		Name:      "Acme Corp",
		PERatio:   "21.5",
		Beta:      "None",
		MarketCap: "5000000000",
	}
	qs := &marketdata.QuoteSummary{
		Price: &marketdata.PriceModule{
			RegularMarketPrice: num(123.45),
			LongName:           sp("Acme Corporation"),
		},
		DefaultKeyStatistics: &marketdata.KeyStatisticsModule{
			Beta: num(1.1),
		},
	}
	bars := []marketdata.DailyBar{
		{Date: "2026-02-02", Close: 130},
		{Date: "2026-01-02", Close: 90},
	}

	f := DeriveOverview(profile, qs, bars)
	if f.Name != "Acme Corporation" {
		t.Errorf("quote summary name should win, got %q", f.Name)
	}
	if f.Price == nil || *f.Price != 123.45 {
		t.Errorf("expected price 123.45, got %v", f.Price)
	}
	if f.Beta == nil || *f.Beta != 1.1 {
		t.Errorf("expected beta from key statistics, got %v", f.Beta)
	}
	if f.TrailingPE == nil || *f.TrailingPE != 21.5 {
		t.Errorf("expected trailing PE from profile, got %v", f.TrailingPE)
	}
	// Range from the bars when the snapshot lacks it.
	if f.FiftyTwoWeekHigh == nil || *f.FiftyTwoWeekHigh != 130 {
		t.Errorf("expected high 130 from bars, got %v", f.FiftyTwoWeekHigh)
	}
	if f.FiftyTwoWeekLow == nil || *f.FiftyTwoWeekLow != 90 {
		t.Errorf("expected low 90 from bars, got %v", f.FiftyTwoWeekLow)
	}
}

func TestDeriveOverviewEmptyInputs(t *testing.T) {
	f := DeriveOverview(nil, nil, nil)
	if f.Price != nil || f.MarketCap != nil || f.YTDReturnPct != nil {
		t.Error("all-nil inputs must derive all-nil facts")
	}
}

func TestSummarizeInsiderTape(t *testing.T) {
	txs := []marketdata.InsiderTransaction{
		{FilerName: sp("A"), TransactionText: sp("Purchase at price 10"), Value: num(1000)},
		{FilerName: sp("B"), TransactionText: sp("Sale at price 12"), Value: num(300)},
		{FilerName: sp("C"), TransactionText: sp("Purchase at price 11"), Value: num(500)},
		{FilerName: sp("D"), TransactionText: sp("Stock Award (Grant)")},
	}
	act := summarizeInsiderTape(txs)
	if act.Buys != 2 || act.Sells != 1 {
		t.Errorf("expected 2 buys / 1 sell, got %d / %d", act.Buys, act.Sells)
	}
	if act.Signal != SignalNetBuy {
		t.Errorf("expected NET_BUY, got %s", act.Signal)
	}
	if act.NetValue == nil || *act.NetValue != 1200 {
		t.Errorf("expected net value 1200, got %v", act.NetValue)
	}

	// Value-less tape falls back to counts.
	countsOnly := []marketdata.InsiderTransaction{
		{TransactionText: sp("Sale")},
		{TransactionText: sp("Sale")},
		{TransactionText: sp("Purchase")},
	}
	if got := summarizeInsiderTape(countsOnly).Signal; got != SignalNetSell {
		t.Errorf("expected NET_SELL from counts, got %s", got)
	}

	if got := summarizeInsiderTape(nil).Signal; got != SignalNeutral {
		t.Errorf("expected NEUTRAL for empty tape, got %s", got)
	}
}

func TestDeriveAnalystBreakdown(t *testing.T) {
	qs := &marketdata.QuoteSummary{
		FinancialData: &marketdata.FinancialDataModule{
			RecommendationKey: sp("buy"),
			TargetMeanPrice:   num(150),
		},
		Price: &marketdata.PriceModule{RegularMarketPrice: num(120)},
		RecommendationTrend: &marketdata.RecommendationTrendModule{
			Trend: []marketdata.RecommendationTrend{
				{Period: "0m", StrongBuy: 10, Buy: 20, Hold: 8, Sell: 1, StrongSell: 1},
				{Period: "-1m", StrongBuy: 8, Buy: 22, Hold: 8, Sell: 2, StrongSell: 0},
			},
		},
	}
	f := DeriveAnalyst(qs)

	if len(f.Breakdown) != 4 {
		t.Fatalf("expected 4 rating buckets, got %d", len(f.Breakdown))
	}
	if f.Breakdown[0].Rating != "Strong Buy" || f.Breakdown[0].Count != 10 || f.Breakdown[0].Trend != TrendUp {
		t.Errorf("unexpected strong buy bucket: %+v", f.Breakdown[0])
	}
	if f.Breakdown[1].Trend != TrendDown {
		t.Errorf("buy count fell, expected DOWN, got %s", f.Breakdown[1].Trend)
	}
	if f.Breakdown[3].Count != 2 {
		t.Errorf("strong sell should fold into sell, got %d", f.Breakdown[3].Count)
	}
	if f.Breakdown[0].Percent == nil || !almostEqual(*f.Breakdown[0].Percent, 25) {
		t.Errorf("expected 25%% strong buy, got %v", f.Breakdown[0].Percent)
	}
	if f.TargetUpside == nil || !almostEqual(*f.TargetUpside, 0.25) {
		t.Errorf("expected 25%% target upside, got %v", f.TargetUpside)
	}
}

func TestDeriveStatements(t *testing.T) {
	income := []marketdata.QuarterlyReport{
		{FiscalDateEnding: "2025-12-31", TotalRevenue: "100", NetIncome: "10", OperatingIncome: "15"},
		{FiscalDateEnding: "2025-09-30", TotalRevenue: "100", NetIncome: "10", OperatingIncome: "15"},
		{FiscalDateEnding: "2025-06-30", TotalRevenue: "100", NetIncome: "10", OperatingIncome: "15"},
		{FiscalDateEnding: "2025-03-31", TotalRevenue: "100", NetIncome: "10", OperatingIncome: "15"},
		{FiscalDateEnding: "2024-12-31", TotalRevenue: "80", NetIncome: "8", OperatingIncome: "12"},
		{FiscalDateEnding: "2024-09-30", TotalRevenue: "80", NetIncome: "8", OperatingIncome: "12"},
		{FiscalDateEnding: "2024-06-30", TotalRevenue: "80", NetIncome: "8", OperatingIncome: "12"},
		{FiscalDateEnding: "2024-03-31", TotalRevenue: "80", NetIncome: "8", OperatingIncome: "12"},
	}
	balance := []marketdata.QuarterlyReport{
		{FiscalDateEnding: "2025-12-31", TotalAssets: "1000", TotalLiabilities: "400", TotalShareholderEquity: "600", CashAndEquivalents: "50"},
		{FiscalDateEnding: "2025-09-30", TotalAssets: "950", TotalLiabilities: "390", TotalShareholderEquity: "560"},
	}
	cashflow := []marketdata.QuarterlyReport{
		{FiscalDateEnding: "2025-12-31", OperatingCashflow: "30", CapitalExpenditures: "5"},
		{FiscalDateEnding: "2025-09-30", OperatingCashflow: "30", CapitalExpenditures: "5"},
	}

	f := DeriveStatements(income, balance, cashflow, fp(100))

	if f.TTMRevenue == nil || *f.TTMRevenue != 400 {
		t.Errorf("expected TTM revenue 400, got %v", f.TTMRevenue)
	}
	if len(f.IncomeYears) != 2 {
		t.Fatalf("expected 2 fiscal years, got %d", len(f.IncomeYears))
	}
	fy25 := f.IncomeYears[1]
	if fy25.FiscalYear != "FY25" {
		t.Errorf("expected FY25, got %s", fy25.FiscalYear)
	}
	if fy25.Revenue == nil || *fy25.Revenue != 400 {
		t.Errorf("expected FY25 revenue 400, got %v", fy25.Revenue)
	}
	if fy25.YoyGrowthPct == nil || !almostEqual(*fy25.YoyGrowthPct, 25) {
		t.Errorf("expected 25%% growth, got %v", fy25.YoyGrowthPct)
	}
	if fy25.EPS == nil || !almostEqual(*fy25.EPS, 0.4) {
		t.Errorf("expected EPS 0.4, got %v", fy25.EPS)
	}

	// Balance uses the latest quarter of the year, not a sum.
	bal25 := f.BalanceYears[1]
	if bal25.TotalAssets == nil || *bal25.TotalAssets != 1000 {
		t.Errorf("expected latest-quarter assets 1000, got %v", bal25.TotalAssets)
	}
	if bal25.DebtToEquity == nil || !almostEqual(*bal25.DebtToEquity, 400.0/600.0) {
		t.Errorf("unexpected D/E: %v", bal25.DebtToEquity)
	}

	cf25 := f.CashFlowYears[1]
	if cf25.FreeCF == nil || *cf25.FreeCF != 50 {
		t.Errorf("expected FCF 50, got %v", cf25.FreeCF)
	}

	if len(f.Ratios) != 9 {
		t.Fatalf("expected 9 ratio metrics, got %d", len(f.Ratios))
	}
	for _, r := range f.Ratios {
		if len(r.Values) != 2 {
			t.Errorf("ratio %s should span 2 years, got %d", r.Metric, len(r.Values))
		}
	}
}

func TestDeriveValuationFallbackWACC(t *testing.T) {
	params := ValuationParams{
		RiskFreeRate:      0.07,
		MarketRiskPremium: 0.06,
		CostOfDebt:        0.09,
		TaxRate:           0.25,
		TerminalGrowth:    0.04,
		WACCFallback:      0.085,
		RevenueGrowth:     0.12,
		ForecastYears:     5,
	}

	// No beta: the computed WACC is unavailable and the fallback is used.
	qs := &marketdata.QuoteSummary{
		Price: &marketdata.PriceModule{
			RegularMarketPrice: num(100),
			MarketCap:          num(1e9),
		},
		DefaultKeyStatistics: &marketdata.KeyStatisticsModule{
			SharesOutstanding: num(1e7),
		},
		FinancialData: &marketdata.FinancialDataModule{
			FreeCashflow: num(5e7),
			TotalDebt:    num(2e8),
			TotalCash:    num(5e7),
		},
	}
	f := DeriveValuation(qs, 2025, params)

	if f.Wacc.WACC != nil {
		t.Error("expected no computed WACC without beta")
	}
	if !almostEqual(f.WaccUsed, 0.085) {
		t.Errorf("expected fallback WACC 0.085, got %f", f.WaccUsed)
	}
	if f.NetDebt == nil || *f.NetDebt != 1.5e8 {
		t.Errorf("expected net debt 150M, got %v", f.NetDebt)
	}
	if f.Dcf.FairValuePerShare == nil {
		t.Fatal("expected a fair value")
	}
	if len(f.Projections) != 5 {
		t.Fatalf("expected 5 projection years, got %d", len(f.Projections))
	}
	if f.Projections[0].FiscalYear != "FY26" {
		t.Errorf("expected first forecast year FY26, got %s", f.Projections[0].FiscalYear)
	}
	if len(f.Sensitivity) != 5 || len(f.Sensitivity[0]) != 5 {
		t.Error("expected a 5x5 sensitivity grid")
	}
}

func TestDeriveValuationNoData(t *testing.T) {
	f := DeriveValuation(nil, 2025, ValuationParams{WACCFallback: 0.085, TerminalGrowth: 0.04})
	if f.BaseFCF != nil || f.Dcf.FairValuePerShare != nil {
		t.Error("no quote summary must yield an empty valuation")
	}
}

func TestBuildDashboard(t *testing.T) {
	qs := &marketdata.QuoteSummary{
		Price: &marketdata.PriceModule{
			RegularMarketPrice: num(50),
			MarketCap:          num(2e9),
			LongName:           sp("Acme Corporation"),
		},
		FinancialData: &marketdata.FinancialDataModule{
			RevenueGrowth: num(0.15),
		},
	}
	d := BuildDashboard("ACME", nil, qs, nil, nil, nil)

	if d.CompanyName != "Acme Corporation" {
		t.Errorf("unexpected company name %q", d.CompanyName)
	}
	if len(d.KeyMetrics.Metrics) != 8 {
		t.Fatalf("expected 8 key metrics, got %d", len(d.KeyMetrics.Metrics))
	}
	if d.KeyMetrics.Metrics[0].Value != "$50.00" {
		t.Errorf("expected formatted price, got %q", d.KeyMetrics.Metrics[0].Value)
	}
	// Missing inputs render as the placeholder, never as zero.
	if d.KeyMetrics.Metrics[2].Value != "—" {
		t.Errorf("expected placeholder for missing P/E, got %q", d.KeyMetrics.Metrics[2].Value)
	}
	if d.Fundamentals.Metrics[1].Value != "15.00%" {
		t.Errorf("expected 15.00%% revenue growth, got %q", d.Fundamentals.Metrics[1].Value)
	}
}
