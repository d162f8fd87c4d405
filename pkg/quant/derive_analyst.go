package quant

import "equity_research/pkg/marketdata"

// Consensus trend directions compare the current month's rating counts to
// the prior month's.
const (
	TrendUp   = "UP"
	TrendDown = "DOWN"
	TrendFlat = "FLAT"
)

// ConsensusBreakdown is one rating bucket of the current trend period.
type ConsensusBreakdown struct {
	Rating  string   `json:"rating"`
	Count   int      `json:"count"`
	Percent *float64 `json:"percent"`
	Trend   string   `json:"trend"`
}

// AnalystFacts is the sell-side picture: targets, the consensus key, and
// the month-over-month rating breakdown.
type AnalystFacts struct {
	RecommendationKey *string  `json:"recommendationKey"`
	NumberOfAnalysts  *float64 `json:"numberOfAnalysts"`
	TargetMean        *float64 `json:"targetMean"`
	TargetMedian      *float64 `json:"targetMedian"`
	TargetHigh        *float64 `json:"targetHigh"`
	TargetLow         *float64 `json:"targetLow"`
	CurrentPrice      *float64 `json:"currentPrice"`
	TargetUpside      *float64 `json:"targetUpside"`

	Breakdown []ConsensusBreakdown `json:"breakdown"`
}

// DeriveAnalyst builds the consensus facts. The breakdown always has the
// four rating buckets, zero-counted when the trend module is absent.
func DeriveAnalyst(qs *marketdata.QuoteSummary) AnalystFacts {
	var f AnalystFacts

	if qs != nil {
		if fd := qs.FinancialData; fd != nil {
			f.RecommendationKey = fd.RecommendationKey
			f.NumberOfAnalysts = fd.NumberOfAnalystOpinions.Value()
			f.TargetMean = fd.TargetMeanPrice.Value()
			f.TargetMedian = fd.TargetMedianPrice.Value()
			f.TargetHigh = fd.TargetHighPrice.Value()
			f.TargetLow = fd.TargetLowPrice.Value()
		}
		if qs.Price != nil {
			f.CurrentPrice = qs.Price.RegularMarketPrice.Value()
		}
	}
	f.TargetUpside = Change(f.TargetMean, f.CurrentPrice)

	current, previous := trendPeriods(qs)
	f.Breakdown = consensusBreakdown(current, previous)
	return f
}

// trendPeriods picks the "0m" and "-1m" entries of the recommendation
// trend, falling back to positional order when periods are unlabeled.
func trendPeriods(qs *marketdata.QuoteSummary) (current, previous *marketdata.RecommendationTrend) {
	if qs == nil || qs.RecommendationTrend == nil {
		return nil, nil
	}
	trend := qs.RecommendationTrend.Trend
	for i := range trend {
		switch trend[i].Period {
		case "0m":
			current = &trend[i]
		case "-1m":
			previous = &trend[i]
		}
	}
	if current == nil && len(trend) > 0 {
		current = &trend[0]
	}
	if previous == nil && len(trend) > 1 {
		previous = &trend[1]
	}
	return current, previous
}

func consensusBreakdown(current, previous *marketdata.RecommendationTrend) []ConsensusBreakdown {
	counts := ratingCounts(current)
	prior := ratingCounts(previous)

	var total int
	for _, c := range counts {
		total += c
	}

	labels := []string{"Strong Buy", "Buy", "Hold", "Sell"}
	rows := make([]ConsensusBreakdown, 0, len(labels))
	for i, label := range labels {
		row := ConsensusBreakdown{Rating: label, Count: counts[i], Trend: TrendFlat}
		if total > 0 {
			row.Percent = ptr(float64(counts[i]) / float64(total) * 100)
		}
		if previous != nil {
			switch {
			case counts[i] > prior[i]:
				row.Trend = TrendUp
			case counts[i] < prior[i]:
				row.Trend = TrendDown
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// ratingCounts folds strong sell into the sell bucket.
func ratingCounts(t *marketdata.RecommendationTrend) [4]int {
	if t == nil {
		return [4]int{}
	}
	return [4]int{t.StrongBuy, t.Buy, t.Hold, t.Sell + t.StrongSell}
}
