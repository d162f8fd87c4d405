// Package quant holds the deterministic derivation layer: pure functions
// that turn raw provider snapshots into the numeric facts the generator
// and the dashboard present. Missing inputs propagate as nil outputs, a
// nil never becomes a zero and never aborts a computation that does not
// need it.
package quant

import "math"

func ptr(v float64) *float64 { return &v }

// nz unwraps with a zero default, for inputs where absence means "none"
// rather than "unknown" (e.g. debt).
func nz(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// WACCInput carries the capital-structure snapshot. Beta and MarketCap are
// required for a result; TotalDebt absent is treated as an unlevered
// balance sheet.
type WACCInput struct {
	Beta      *float64
	MarketCap *float64
	TotalDebt *float64

	RiskFreeRate      float64
	MarketRiskPremium float64
	PreTaxCostOfDebt  float64
	TaxRate           float64
}

// WACCResult holds the CAPM buildup. Fields are nil when their inputs were.
type WACCResult struct {
	CostOfEquity       *float64
	AfterTaxCostOfDebt *float64
	WeightEquity       *float64
	WeightDebt         *float64
	WACC               *float64
}

// CalculateWACC computes the cost of capital from CAPM with market-value
// weights. Ke = Rf + beta * ERP, Kd after tax, weights E/(D+E) and D/(D+E).
func CalculateWACC(in WACCInput) WACCResult {
	var out WACCResult
	out.AfterTaxCostOfDebt = ptr(in.PreTaxCostOfDebt * (1 - in.TaxRate))

	if in.Beta != nil {
		out.CostOfEquity = ptr(in.RiskFreeRate + *in.Beta*in.MarketRiskPremium)
	}
	if in.MarketCap == nil || *in.MarketCap <= 0 {
		return out
	}

	equity := *in.MarketCap
	debt := nz(in.TotalDebt)
	total := equity + debt
	out.WeightEquity = ptr(equity / total)
	out.WeightDebt = ptr(debt / total)

	if out.CostOfEquity == nil {
		return out
	}
	wacc := *out.CostOfEquity**out.WeightEquity + *out.AfterTaxCostOfDebt**out.WeightDebt
	out.WACC = ptr(wacc)
	return out
}

// DCFInput parameterizes the two-stage free-cash-flow model. BaseFCF is
// the trailing free cash flow the projection grows from.
type DCFInput struct {
	BaseFCF           *float64
	GrowthRate        float64
	ForecastYears     int
	WACC              float64
	TerminalGrowth    float64
	NetDebt           *float64
	SharesOutstanding *float64
	CurrentPrice      *float64
}

// DCFResult is the valuation buildup. A missing base cash flow leaves the
// whole result nil; a discount rate at or below the terminal growth rate
// leaves the terminal value and everything downstream of it nil.
type DCFResult struct {
	ProjectedFCF      []float64
	PvOfFCF           *float64
	PvOfTerminalValue *float64
	EnterpriseValue   *float64
	NetDebt           *float64
	EquityValue       *float64
	FairValuePerShare *float64
	ImpliedUpside     *float64
}

// CalculateDCF runs the explicit forecast, capitalizes the terminal year
// with Gordon growth, and bridges enterprise value to a per-share fair
// value.
func CalculateDCF(in DCFInput) DCFResult {
	var out DCFResult
	if in.BaseFCF == nil {
		return out
	}
	years := in.ForecastYears
	if years <= 0 {
		years = 5
	}

	fcf := *in.BaseFCF
	var pvFCF float64
	discount := 1.0
	out.ProjectedFCF = make([]float64, 0, years)
	for y := 1; y <= years; y++ {
		fcf *= 1 + in.GrowthRate
		out.ProjectedFCF = append(out.ProjectedFCF, fcf)
		discount /= 1 + in.WACC
		pvFCF += fcf * discount
	}
	out.PvOfFCF = ptr(pvFCF)

	if in.WACC <= in.TerminalGrowth {
		return out
	}
	terminalFCF := fcf * (1 + in.TerminalGrowth)
	pvTV := terminalFCF / (in.WACC - in.TerminalGrowth) * discount
	out.PvOfTerminalValue = ptr(pvTV)

	ev := pvFCF + pvTV
	netDebt := nz(in.NetDebt)
	out.EnterpriseValue = ptr(ev)
	out.NetDebt = ptr(netDebt)
	out.EquityValue = ptr(ev - netDebt)

	if in.SharesOutstanding == nil || *in.SharesOutstanding <= 0 {
		return out
	}
	fair := (ev - netDebt) / *in.SharesOutstanding
	out.FairValuePerShare = ptr(fair)

	if in.CurrentPrice != nil && *in.CurrentPrice > 0 {
		out.ImpliedUpside = ptr((fair - *in.CurrentPrice) / *in.CurrentPrice)
	}
	return out
}

// SensitivityCell is one fair value in the WACC x terminal-growth grid.
// FairValue is nil where the pair is degenerate (wacc <= g).
type SensitivityCell struct {
	WACC           float64
	TerminalGrowth float64
	FairValue      *float64
}

// DefaultWACCRange is the five-step discount rate axis, 7.5% to 9.5%.
func DefaultWACCRange() []float64 {
	return []float64{0.075, 0.080, 0.085, 0.090, 0.095}
}

// DefaultGrowthRange is the five-step terminal growth axis, 2.5% to 4.5%.
func DefaultGrowthRange() []float64 {
	return []float64{0.025, 0.030, 0.035, 0.040, 0.045}
}

// SensitivityGrid re-runs the model over every axis pair. Rows follow the
// WACC axis, columns the growth axis.
func SensitivityGrid(base DCFInput, waccs, growths []float64) [][]SensitivityCell {
	grid := make([][]SensitivityCell, len(waccs))
	for i, w := range waccs {
		row := make([]SensitivityCell, len(growths))
		for j, g := range growths {
			in := base
			in.WACC = w
			in.TerminalGrowth = g
			row[j] = SensitivityCell{
				WACC:           w,
				TerminalGrowth: g,
				FairValue:      CalculateDCF(in).FairValuePerShare,
			}
		}
		grid[i] = row
	}
	return grid
}

// TTM sums the four most recent quarterly values. Fewer than four quarters
// or any missing quarter means no trailing figure.
func TTM(values []*float64) *float64 {
	if len(values) < 4 {
		return nil
	}
	var sum float64
	for _, v := range values[:4] {
		if v == nil {
			return nil
		}
		sum += *v
	}
	return &sum
}

// Ratio divides nil-safely and refuses a zero denominator.
func Ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	return ptr(*num / *den)
}

// Change returns (current - previous) / previous.
func Change(current, previous *float64) *float64 {
	if current == nil || previous == nil || *previous == 0 {
		return nil
	}
	return ptr((*current - *previous) / *previous)
}

const tradingSessionsPerYear = 252

// AnnualizedVolatility is the standard deviation of daily returns over the
// trailing window, annualized by sqrt(252) and expressed in percent.
// Closes are oldest first; nil sessions are skipped.
func AnnualizedVolatility(closes []*float64, sessions int) *float64 {
	returns := dailyReturns(closes, sessions)
	if len(returns) < 2 {
		return nil
	}
	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return ptr(math.Sqrt(variance) * math.Sqrt(tradingSessionsPerYear) * 100)
}

// MaxDrawdown is the deepest peak-to-trough decline over the trailing
// window, in percent (negative or zero).
func MaxDrawdown(closes []*float64, sessions int) *float64 {
	prices := tailPrices(closes, sessions)
	if len(prices) < 2 {
		return nil
	}
	peak := prices[0]
	worst := 0.0
	for _, p := range prices[1:] {
		if p > peak {
			peak = p
			continue
		}
		dd := (p - peak) / peak
		if dd < worst {
			worst = dd
		}
	}
	return ptr(worst * 100)
}

// TotalReturn is the percent change from the first to the last close of
// the trailing window.
func TotalReturn(closes []*float64, sessions int) *float64 {
	prices := tailPrices(closes, sessions)
	if len(prices) < 2 || prices[0] == 0 {
		return nil
	}
	return ptr((prices[len(prices)-1] - prices[0]) / prices[0] * 100)
}

func tailPrices(closes []*float64, sessions int) []float64 {
	start := 0
	if sessions > 0 && len(closes) > sessions {
		start = len(closes) - sessions
	}
	prices := make([]float64, 0, len(closes)-start)
	for _, c := range closes[start:] {
		if c != nil {
			prices = append(prices, *c)
		}
	}
	return prices
}

func dailyReturns(closes []*float64, sessions int) []float64 {
	prices := tailPrices(closes, sessions)
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, prices[i]/prices[i-1]-1)
	}
	return returns
}
