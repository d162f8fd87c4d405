package quant

import (
	"sort"

	"equity_research/pkg/marketdata"
)

// Facts tables for the financial-statement section. Years run oldest to
// newest, at most six fiscal years. Flow figures are the sum of the
// quarters reported in that year; balance figures are the year's last
// reported quarter.

type IncomeYearFacts struct {
	FiscalYear      string   `json:"fiscalYear"`
	Revenue         *float64 `json:"revenue"`
	YoyGrowthPct    *float64 `json:"yoyGrowthPct"`
	OperatingIncome *float64 `json:"operatingIncome"`
	NetIncome       *float64 `json:"netIncome"`
	EPS             *float64 `json:"eps"`
}

type BalanceYearFacts struct {
	FiscalYear         string   `json:"fiscalYear"`
	Cash               *float64 `json:"cash"`
	TotalAssets        *float64 `json:"totalAssets"`
	TotalLiabilities   *float64 `json:"totalLiabilities"`
	ShareholdersEquity *float64 `json:"shareholdersEquity"`
	DebtToEquity       *float64 `json:"debtToEquity"`
}

type CashFlowYearFacts struct {
	FiscalYear    string   `json:"fiscalYear"`
	OperatingCF   *float64 `json:"operatingCf"`
	Capex         *float64 `json:"capex"`
	FreeCF        *float64 `json:"freeCf"`
	FCFMarginPct  *float64 `json:"fcfMarginPct"`
	DividendsPaid *float64 `json:"dividendsPaid"`
	ShareBuyback  *float64 `json:"shareBuyback"`
}

type RatioYearValue struct {
	FiscalYear string   `json:"fiscalYear"`
	Value      *float64 `json:"value"`
}

type RatioFacts struct {
	Metric string           `json:"metric"`
	Values []RatioYearValue `json:"values"`
}

// StatementFacts is the grounding for the financial-statement analysis
// section.
type StatementFacts struct {
	IncomeYears   []IncomeYearFacts   `json:"incomeYears"`
	BalanceYears  []BalanceYearFacts  `json:"balanceYears"`
	CashFlowYears []CashFlowYearFacts `json:"cashFlowYears"`
	Ratios        []RatioFacts        `json:"ratios"`

	TTMRevenue   *float64 `json:"ttmRevenue"`
	TTMNetIncome *float64 `json:"ttmNetIncome"`
}

const maxStatementYears = 6

// DeriveStatements aggregates the quarterly statement feeds into annual
// tables plus the ratio grid. shares is used for per-share figures and may
// be nil.
func DeriveStatements(income, balance, cashflow []marketdata.QuarterlyReport, shares *float64) StatementFacts {
	var f StatementFacts

	f.TTMRevenue = TTM(quarterValues(income, func(r marketdata.QuarterlyReport) string { return r.TotalRevenue }))
	f.TTMNetIncome = TTM(quarterValues(income, func(r marketdata.QuarterlyReport) string { return r.NetIncome }))

	incomeYears := groupByYear(income)
	balanceYears := groupByYear(balance)
	cashflowYears := groupByYear(cashflow)

	years := fiscalYears(incomeYears, balanceYears, cashflowYears)

	var prevRevenue *float64
	for _, fy := range years {
		label := "FY" + fy[2:]

		iq := incomeYears[fy]
		revenue := sumField(iq, func(r marketdata.QuarterlyReport) string { return r.TotalRevenue })
		opIncome := sumField(iq, func(r marketdata.QuarterlyReport) string { return r.OperatingIncome })
		netIncome := sumField(iq, func(r marketdata.QuarterlyReport) string { return r.NetIncome })
		row := IncomeYearFacts{
			FiscalYear:      label,
			Revenue:         revenue,
			YoyGrowthPct:    scalePct(Change(revenue, prevRevenue)),
			OperatingIncome: opIncome,
			NetIncome:       netIncome,
			EPS:             Ratio(netIncome, shares),
		}
		prevRevenue = revenue
		f.IncomeYears = append(f.IncomeYears, row)

		bq := latestQuarter(balanceYears[fy])
		var bal BalanceYearFacts
		bal.FiscalYear = label
		if bq != nil {
			bal.Cash = marketdata.ParseNum(bq.CashAndEquivalents)
			bal.TotalAssets = marketdata.ParseNum(bq.TotalAssets)
			bal.TotalLiabilities = marketdata.ParseNum(bq.TotalLiabilities)
			bal.ShareholdersEquity = marketdata.ParseNum(bq.TotalShareholderEquity)
			bal.DebtToEquity = Ratio(bal.TotalLiabilities, bal.ShareholdersEquity)
		}
		f.BalanceYears = append(f.BalanceYears, bal)

		cq := cashflowYears[fy]
		opCF := sumField(cq, func(r marketdata.QuarterlyReport) string { return r.OperatingCashflow })
		capex := sumField(cq, func(r marketdata.QuarterlyReport) string { return r.CapitalExpenditures })
		freeCF := subtract(opCF, capex)
		f.CashFlowYears = append(f.CashFlowYears, CashFlowYearFacts{
			FiscalYear:    label,
			OperatingCF:   opCF,
			Capex:         capex,
			FreeCF:        freeCF,
			FCFMarginPct:  scalePct(Ratio(freeCF, revenue)),
			DividendsPaid: sumField(cq, func(r marketdata.QuarterlyReport) string { return r.DividendPayout }),
			ShareBuyback:  sumField(cq, func(r marketdata.QuarterlyReport) string { return r.ShareRepurchases }),
		})
	}

	f.Ratios = deriveRatios(f)
	return f
}

// deriveRatios computes the nine-metric grid over the annual tables.
func deriveRatios(f StatementFacts) []RatioFacts {
	metrics := []struct {
		name string
		at   func(i int) *float64
	}{
		{"Revenue Growth", func(i int) *float64 { return f.IncomeYears[i].YoyGrowthPct }},
		{"Operating Margin", func(i int) *float64 {
			return scalePct(Ratio(f.IncomeYears[i].OperatingIncome, f.IncomeYears[i].Revenue))
		}},
		{"Net Margin", func(i int) *float64 {
			return scalePct(Ratio(f.IncomeYears[i].NetIncome, f.IncomeYears[i].Revenue))
		}},
		{"ROE", func(i int) *float64 {
			return scalePct(Ratio(f.IncomeYears[i].NetIncome, f.BalanceYears[i].ShareholdersEquity))
		}},
		{"ROA", func(i int) *float64 {
			return scalePct(Ratio(f.IncomeYears[i].NetIncome, f.BalanceYears[i].TotalAssets))
		}},
		{"Debt to Equity", func(i int) *float64 { return f.BalanceYears[i].DebtToEquity }},
		{"FCF Margin", func(i int) *float64 { return f.CashFlowYears[i].FCFMarginPct }},
		{"Capex to Revenue", func(i int) *float64 {
			return scalePct(Ratio(f.CashFlowYears[i].Capex, f.IncomeYears[i].Revenue))
		}},
		{"Equity Ratio", func(i int) *float64 {
			return scalePct(Ratio(f.BalanceYears[i].ShareholdersEquity, f.BalanceYears[i].TotalAssets))
		}},
	}

	out := make([]RatioFacts, 0, len(metrics))
	for _, m := range metrics {
		rf := RatioFacts{Metric: m.name}
		for i := range f.IncomeYears {
			rf.Values = append(rf.Values, RatioYearValue{
				FiscalYear: f.IncomeYears[i].FiscalYear,
				Value:      m.at(i),
			})
		}
		out = append(out, rf)
	}
	return out
}

func quarterValues(reports []marketdata.QuarterlyReport, field func(marketdata.QuarterlyReport) string) []*float64 {
	out := make([]*float64, 0, len(reports))
	for _, r := range reports {
		out = append(out, marketdata.ParseNum(field(r)))
	}
	return out
}

func groupByYear(reports []marketdata.QuarterlyReport) map[string][]marketdata.QuarterlyReport {
	byYear := make(map[string][]marketdata.QuarterlyReport)
	for _, r := range reports {
		if y := yearOf(r.FiscalDateEnding); y != "" {
			byYear[y] = append(byYear[y], r)
		}
	}
	return byYear
}

// fiscalYears returns the union of years across the feeds, ascending,
// capped to the newest maxStatementYears.
func fiscalYears(groups ...map[string][]marketdata.QuarterlyReport) []string {
	seen := make(map[string]bool)
	for _, g := range groups {
		for y := range g {
			seen[y] = true
		}
	}
	years := make([]string, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Strings(years)
	if len(years) > maxStatementYears {
		years = years[len(years)-maxStatementYears:]
	}
	return years
}

func sumField(reports []marketdata.QuarterlyReport, field func(marketdata.QuarterlyReport) string) *float64 {
	var sum float64
	var seen bool
	for _, r := range reports {
		if v := marketdata.ParseNum(field(r)); v != nil {
			sum += *v
			seen = true
		}
	}
	if !seen {
		return nil
	}
	return &sum
}

// latestQuarter picks the most recent report of a year's batch.
func latestQuarter(reports []marketdata.QuarterlyReport) *marketdata.QuarterlyReport {
	var latest *marketdata.QuarterlyReport
	for i := range reports {
		if latest == nil || reports[i].FiscalDateEnding > latest.FiscalDateEnding {
			latest = &reports[i]
		}
	}
	return latest
}

func subtract(a, b *float64) *float64 {
	if a == nil {
		return nil
	}
	return ptr(*a - nz(b))
}

func scalePct(fraction *float64) *float64 {
	if fraction == nil {
		return nil
	}
	return ptr(*fraction * 100)
}
