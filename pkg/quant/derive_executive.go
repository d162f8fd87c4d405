package quant

import "equity_research/pkg/marketdata"

// ExecutiveFacts is the condensed picture for the executive summary: the
// headline price, the model fair value, and the consensus view, plus a few
// fundamentals for the thesis narrative.
type ExecutiveFacts struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Sector string `json:"sector"`

	CurrentPrice     *float64 `json:"currentPrice"`
	MarketCap        *float64 `json:"marketCap"`
	DcfFairValue     *float64 `json:"dcfFairValue"`
	ImpliedUpside    *float64 `json:"impliedUpside"`
	AnalystConsensus *string  `json:"analystConsensus"`
	TargetMean       *float64 `json:"targetMean"`

	RevenueGrowth  *float64 `json:"revenueGrowth"`
	ProfitMargins  *float64 `json:"profitMargins"`
	ReturnOnEquity *float64 `json:"returnOnEquity"`

	BusinessSummary string `json:"businessSummary"`
}

// DeriveExecutive combines the quote snapshot with the valuation outcome.
// valuation may be nil when the DCF could not run; the summary then leans
// on consensus alone.
func DeriveExecutive(symbol string, qs *marketdata.QuoteSummary, valuation *ValuationFacts) ExecutiveFacts {
	f := ExecutiveFacts{Symbol: symbol}

	if qs != nil {
		if p := qs.Price; p != nil {
			f.CurrentPrice = p.RegularMarketPrice.Value()
			f.MarketCap = p.MarketCap.Value()
			if p.LongName != nil {
				f.Name = *p.LongName
			}
		}
		if fd := qs.FinancialData; fd != nil {
			f.AnalystConsensus = fd.RecommendationKey
			f.TargetMean = fd.TargetMeanPrice.Value()
			f.RevenueGrowth = fd.RevenueGrowth.Value()
			f.ProfitMargins = fd.ProfitMargins.Value()
			f.ReturnOnEquity = fd.ReturnOnEquity.Value()
		}
		if a := qs.AssetProfile; a != nil {
			if a.Sector != nil {
				f.Sector = *a.Sector
			}
			if a.LongBusinessSummary != nil {
				f.BusinessSummary = *a.LongBusinessSummary
			}
		}
	}

	if valuation != nil {
		f.DcfFairValue = valuation.Dcf.FairValuePerShare
		f.ImpliedUpside = valuation.Dcf.ImpliedUpside
		if f.CurrentPrice == nil {
			f.CurrentPrice = valuation.CurrentPrice
		}
	}
	return f
}
