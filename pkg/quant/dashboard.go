package quant

import "equity_research/pkg/marketdata"

// Metric is one formatted dashboard row.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Note  string `json:"note,omitempty"`
}

// MetricGroup is one titled card of the dashboard.
type MetricGroup struct {
	Title   string   `json:"title"`
	Metrics []Metric `json:"metrics"`
}

// Dashboard is the formatted metrics view for one symbol. Values are
// display strings; absent inputs render as the missing placeholder so the
// layout never shifts.
type Dashboard struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`

	KeyMetrics     MetricGroup `json:"keyMetrics"`
	Fundamentals   MetricGroup `json:"fundamentals"`
	RiskMetrics    MetricGroup `json:"riskMetrics"`
	CompanyProfile MetricGroup `json:"companyProfile"`
}

// BuildDashboard assembles the four metric groups from whichever provider
// snapshots arrived. Every argument may be nil or empty.
func BuildDashboard(symbol string, profile *marketdata.CompanyProfile, qs *marketdata.QuoteSummary, chart *marketdata.ChartResult, bars []marketdata.DailyBar, ttmRevenue *float64) Dashboard {
	overview := DeriveOverview(profile, qs, bars)

	d := Dashboard{Symbol: symbol, CompanyName: overview.Name}

	d.KeyMetrics = MetricGroup{
		Title: "Key Metrics",
		Metrics: []Metric{
			{Label: "Price", Value: FormatValue(overview.Price, FormatCurrency)},
			{Label: "Market Cap", Value: FormatValue(overview.MarketCap, FormatCurrencyCompact)},
			{Label: "P/E (TTM)", Value: FormatValue(overview.TrailingPE, FormatNumber)},
			{Label: "Forward P/E", Value: FormatValue(overview.ForwardPE, FormatNumber)},
			{Label: "Dividend Yield", Value: FormatValue(overview.DividendYield, FormatPercentage)},
			{Label: "52W High", Value: FormatValue(overview.FiftyTwoWeekHigh, FormatCurrency)},
			{Label: "52W Low", Value: FormatValue(overview.FiftyTwoWeekLow, FormatCurrency)},
			{Label: "YTD Return", Value: FormatPercent(overview.YTDReturnPct)},
		},
	}

	var revGrowth, grossMargins, opMargins, profitMargins, roe, fcf, eps *float64
	if qs != nil && qs.FinancialData != nil {
		fd := qs.FinancialData
		revGrowth = fd.RevenueGrowth.Value()
		grossMargins = fd.GrossMargins.Value()
		opMargins = fd.OperatingMargins.Value()
		profitMargins = fd.ProfitMargins.Value()
		roe = fd.ReturnOnEquity.Value()
		fcf = fd.FreeCashflow.Value()
		if ttmRevenue == nil {
			ttmRevenue = fd.TotalRevenue.Value()
		}
	}
	if profile != nil {
		eps = marketdata.ParseNum(profile.EPS)
	}
	d.Fundamentals = MetricGroup{
		Title: "Fundamentals",
		Metrics: []Metric{
			{Label: "Revenue (TTM)", Value: FormatValue(ttmRevenue, FormatCurrencyCompact)},
			{Label: "Revenue Growth", Value: FormatValue(revGrowth, FormatPercentage)},
			{Label: "Gross Margin", Value: FormatValue(grossMargins, FormatPercentage)},
			{Label: "Operating Margin", Value: FormatValue(opMargins, FormatPercentage)},
			{Label: "Net Margin", Value: FormatValue(profitMargins, FormatPercentage)},
			{Label: "ROE", Value: FormatValue(roe, FormatPercentage)},
			{Label: "EPS (TTM)", Value: FormatValue(eps, FormatCurrency)},
			{Label: "Free Cash Flow", Value: FormatValue(fcf, FormatCurrencyCompact)},
		},
	}

	var volatility, drawdown, totalReturn *float64
	if chart != nil {
		volatility = AnnualizedVolatility(chart.Closes, tradingSessionsPerYear)
		drawdown = MaxDrawdown(chart.Closes, tradingSessionsPerYear)
		totalReturn = TotalReturn(chart.Closes, tradingSessionsPerYear)
	}
	var currentRatio, debtToEquity *float64
	if qs != nil && qs.FinancialData != nil {
		currentRatio = qs.FinancialData.CurrentRatio.Value()
		if equity := equityFromHistory(qs); equity != nil {
			debtToEquity = Ratio(qs.FinancialData.TotalDebt.Value(), equity)
		}
	}
	d.RiskMetrics = MetricGroup{
		Title: "Risk Metrics",
		Metrics: []Metric{
			{Label: "Beta", Value: FormatValue(overview.Beta, FormatNumber)},
			{Label: "Volatility (1Y)", Value: FormatPercent(volatility), Note: "Annualized daily return volatility"},
			{Label: "Max Drawdown (1Y)", Value: FormatPercent(drawdown)},
			{Label: "Total Return (1Y)", Value: FormatPercent(totalReturn)},
			{Label: "Current Ratio", Value: FormatValue(currentRatio, FormatNumber)},
			{Label: "Debt / Equity", Value: FormatValue(debtToEquity, FormatNumber)},
		},
	}

	profileMetrics := []Metric{
		{Label: "Sector", Value: orMissing(overview.Sector)},
		{Label: "Industry", Value: orMissing(overview.Industry)},
		{Label: "Exchange", Value: orMissing(overview.Exchange)},
	}
	if qs != nil && qs.AssetProfile != nil {
		a := qs.AssetProfile
		country, employees := Missing, Missing
		if a.Country != nil && *a.Country != "" {
			country = *a.Country
		}
		if a.FullTimeEmployees != nil {
			v := float64(*a.FullTimeEmployees)
			employees = FormatValue(&v, FormatCompact)
		}
		profileMetrics = append(profileMetrics,
			Metric{Label: "Country", Value: country},
			Metric{Label: "Employees", Value: employees},
		)
	}
	d.CompanyProfile = MetricGroup{Title: "Company Profile", Metrics: profileMetrics}
	return d
}

func equityFromHistory(qs *marketdata.QuoteSummary) *float64 {
	if qs.BalanceHistory == nil || len(qs.BalanceHistory.Statements) == 0 {
		return nil
	}
	return qs.BalanceHistory.Statements[0].TotalStockholderEquity.Value()
}

func orMissing(s string) string {
	if s == "" {
		return Missing
	}
	return s
}
