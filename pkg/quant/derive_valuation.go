package quant

import (
	"fmt"

	"equity_research/pkg/marketdata"
)

// ValuationParams are the model constants. They come from configuration;
// the derivation itself stays pure.
type ValuationParams struct {
	RiskFreeRate      float64
	MarketRiskPremium float64
	CostOfDebt        float64
	TaxRate           float64
	TerminalGrowth    float64
	WACCFallback      float64
	RevenueGrowth     float64
	ForecastYears     int
}

// ProjectedYearFacts is one forecast year of the explicit period.
type ProjectedYearFacts struct {
	FiscalYear       string   `json:"fiscalYear"`
	Revenue          *float64 `json:"revenue"`
	RevenueGrowthPct *float64 `json:"revenueGrowthPct"`
	OperatingIncome  *float64 `json:"operatingIncome"`
	NetIncome        *float64 `json:"netIncome"`
	FreeCashFlow     *float64 `json:"freeCashFlow"`
	FCFMarginPct     *float64 `json:"fcfMarginPct"`
	DiscountFactor   *float64 `json:"discountFactor"`
	PresentValue     *float64 `json:"presentValue"`
}

// ValuationFacts is the full DCF picture for the valuation section: the
// cost-of-capital buildup, the explicit forecast, the bridge to a fair
// value per share, and the sensitivity grid.
type ValuationFacts struct {
	CurrentPrice      *float64 `json:"currentPrice"`
	SharesOutstanding *float64 `json:"sharesOutstanding"`
	NetDebt           *float64 `json:"netDebt"`
	BaseFCF           *float64 `json:"baseFcf"`

	Params   ValuationParams `json:"params"`
	Wacc     WACCResult      `json:"wacc"`
	WaccUsed float64         `json:"waccUsed"`

	Projections []ProjectedYearFacts `json:"projections"`
	Dcf         DCFResult            `json:"dcf"`
	Sensitivity [][]SensitivityCell  `json:"sensitivity"`
}

// DeriveValuation derives the DCF model from the quote summary. When the
// capital structure cannot support a computed WACC the configured fallback
// keeps the model runnable; a missing base cash flow leaves the valuation
// empty and the section reports no fair value.
func DeriveValuation(qs *marketdata.QuoteSummary, startYear int, params ValuationParams) ValuationFacts {
	f := ValuationFacts{Params: params}

	var marketCap, beta, totalDebt, totalCash, revenue, opMargin, netMargin *float64
	if qs != nil {
		if qs.Price != nil {
			f.CurrentPrice = qs.Price.RegularMarketPrice.Value()
			marketCap = qs.Price.MarketCap.Value()
		}
		if k := qs.DefaultKeyStatistics; k != nil {
			beta = k.Beta.Value()
			f.SharesOutstanding = k.SharesOutstanding.Value()
		}
		if fd := qs.FinancialData; fd != nil {
			totalDebt = fd.TotalDebt.Value()
			totalCash = fd.TotalCash.Value()
			revenue = fd.TotalRevenue.Value()
			opMargin = fd.OperatingMargins.Value()
			netMargin = fd.ProfitMargins.Value()
			f.BaseFCF = fd.FreeCashflow.Value()
		}
	}
	if f.BaseFCF == nil {
		f.BaseFCF = trailingFCF(qs)
	}
	if totalDebt != nil || totalCash != nil {
		f.NetDebt = ptr(nz(totalDebt) - nz(totalCash))
	}

	f.Wacc = CalculateWACC(WACCInput{
		Beta:              beta,
		MarketCap:         marketCap,
		TotalDebt:         totalDebt,
		RiskFreeRate:      params.RiskFreeRate,
		MarketRiskPremium: params.MarketRiskPremium,
		PreTaxCostOfDebt:  params.CostOfDebt,
		TaxRate:           params.TaxRate,
	})
	f.WaccUsed = params.WACCFallback
	if f.Wacc.WACC != nil {
		f.WaccUsed = *f.Wacc.WACC
	}

	in := DCFInput{
		BaseFCF:           f.BaseFCF,
		GrowthRate:        params.RevenueGrowth,
		ForecastYears:     params.ForecastYears,
		WACC:              f.WaccUsed,
		TerminalGrowth:    params.TerminalGrowth,
		NetDebt:           f.NetDebt,
		SharesOutstanding: f.SharesOutstanding,
		CurrentPrice:      f.CurrentPrice,
	}
	f.Dcf = CalculateDCF(in)
	f.Sensitivity = SensitivityGrid(in, DefaultWACCRange(), DefaultGrowthRange())
	f.Projections = projectYears(in, startYear, revenue, opMargin, netMargin)
	return f
}

// projectYears grows revenue and free cash flow at the model growth rate,
// holding today's margins constant across the forecast.
func projectYears(in DCFInput, startYear int, revenue, opMargin, netMargin *float64) []ProjectedYearFacts {
	years := in.ForecastYears
	if years <= 0 {
		years = 5
	}
	out := make([]ProjectedYearFacts, 0, years)

	rev := revenue
	fcf := in.BaseFCF
	discount := 1.0
	for y := 1; y <= years; y++ {
		discount /= 1 + in.WACC
		facts := ProjectedYearFacts{
			FiscalYear:       fmt.Sprintf("FY%02d", (startYear+y)%100),
			RevenueGrowthPct: ptr(in.GrowthRate * 100),
			DiscountFactor:   ptr(discount),
		}
		if rev != nil {
			grown := *rev * (1 + in.GrowthRate)
			rev = &grown
			facts.Revenue = ptr(grown)
			if opMargin != nil {
				facts.OperatingIncome = ptr(grown * *opMargin)
			}
			if netMargin != nil {
				facts.NetIncome = ptr(grown * *netMargin)
			}
		}
		if fcf != nil {
			grown := *fcf * (1 + in.GrowthRate)
			fcf = &grown
			facts.FreeCashFlow = ptr(grown)
			facts.PresentValue = ptr(grown * discount)
			facts.FCFMarginPct = Ratio(facts.FreeCashFlow, facts.Revenue)
			if facts.FCFMarginPct != nil {
				facts.FCFMarginPct = ptr(*facts.FCFMarginPct * 100)
			}
		}
		out = append(out, facts)
	}
	return out
}

// trailingFCF sums operating cash flow and capex over the reported annual
// cash flow statements' latest year.
func trailingFCF(qs *marketdata.QuoteSummary) *float64 {
	if qs == nil || qs.CashflowHistory == nil || len(qs.CashflowHistory.Statements) == 0 {
		return nil
	}
	latest := qs.CashflowHistory.Statements[0]
	cfo := latest.TotalCashFromOperatingActivities.Value()
	capex := latest.CapitalExpenditures.Value()
	if cfo == nil {
		return nil
	}
	// Capex is reported signed negative.
	return ptr(*cfo + nz(capex))
}
