package quant

import "equity_research/pkg/marketdata"

// OverviewFacts is the numeric grounding for the overview section: the
// snapshot the generator summarizes and the fixed metric rows are built
// from. Quote-summary values win; the profile strings are the fallback.
type OverviewFacts struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Exchange    string `json:"exchange"`
	Sector      string `json:"sector"`
	Industry    string `json:"industry"`
	Description string `json:"description"`

	Price            *float64 `json:"price"`
	MarketCap        *float64 `json:"marketCap"`
	TrailingPE       *float64 `json:"trailingPE"`
	ForwardPE        *float64 `json:"forwardPE"`
	PriceToBook      *float64 `json:"priceToBook"`
	Beta             *float64 `json:"beta"`
	DividendYield    *float64 `json:"dividendYield"`
	FiftyTwoWeekHigh *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  *float64 `json:"fiftyTwoWeekLow"`
	AverageVolume    *float64 `json:"averageVolume"`
	YTDReturnPct     *float64 `json:"ytdReturnPct"`
}

// DeriveOverview merges the provider snapshots into overview facts. Any
// argument may be nil or empty; the corresponding fields stay nil.
func DeriveOverview(profile *marketdata.CompanyProfile, qs *marketdata.QuoteSummary, bars []marketdata.DailyBar) OverviewFacts {
	var f OverviewFacts

	if profile != nil {
		f.Symbol = profile.Symbol
		f.Name = profile.Name
		f.Exchange = profile.Exchange
		f.Sector = profile.Sector
		f.Industry = profile.Industry
		f.Description = profile.Description
		f.MarketCap = marketdata.ParseNum(profile.MarketCap)
		f.TrailingPE = marketdata.ParseNum(profile.PERatio)
		f.Beta = marketdata.ParseNum(profile.Beta)
		f.FiftyTwoWeekHigh = marketdata.ParseNum(profile.FiftyTwoWeekHigh)
		f.FiftyTwoWeekLow = marketdata.ParseNum(profile.FiftyTwoWeekLow)
		f.AverageVolume = marketdata.ParseNum(profile.AverageVolume)
	}

	if qs != nil {
		if p := qs.Price; p != nil {
			f.Price = p.RegularMarketPrice.Value()
			if v := p.MarketCap.Value(); v != nil {
				f.MarketCap = v
			}
			if p.LongName != nil && *p.LongName != "" {
				f.Name = *p.LongName
			}
			if p.ExchangeName != nil && *p.ExchangeName != "" {
				f.Exchange = *p.ExchangeName
			}
		}
		if d := qs.SummaryDetail; d != nil {
			if v := d.TrailingPE.Value(); v != nil {
				f.TrailingPE = v
			}
			f.ForwardPE = d.ForwardPE.Value()
			f.DividendYield = d.DividendYield.Value()
			if v := d.FiftyTwoWeekHigh.Value(); v != nil {
				f.FiftyTwoWeekHigh = v
			}
			if v := d.FiftyTwoWeekLow.Value(); v != nil {
				f.FiftyTwoWeekLow = v
			}
		}
		if k := qs.DefaultKeyStatistics; k != nil {
			if v := k.Beta.Value(); v != nil {
				f.Beta = v
			}
			f.PriceToBook = k.PriceToBook.Value()
		}
		if a := qs.AssetProfile; a != nil {
			if a.Sector != nil && *a.Sector != "" {
				f.Sector = *a.Sector
			}
			if a.Industry != nil && *a.Industry != "" {
				f.Industry = *a.Industry
			}
			if a.LongBusinessSummary != nil && f.Description == "" {
				f.Description = *a.LongBusinessSummary
			}
		}
	}

	// Range from the price history when the snapshot lacks it.
	if f.FiftyTwoWeekHigh == nil || f.FiftyTwoWeekLow == nil {
		high, low := FiftyTwoWeekRange(bars)
		if f.FiftyTwoWeekHigh == nil {
			f.FiftyTwoWeekHigh = high
		}
		if f.FiftyTwoWeekLow == nil {
			f.FiftyTwoWeekLow = low
		}
	}
	f.YTDReturnPct = YTDReturn(bars)

	if f.Price == nil && len(bars) > 0 {
		f.Price = ptr(bars[0].Close)
	}
	return f
}
