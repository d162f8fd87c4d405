package quant

import (
	"strings"
	"time"

	"equity_research/pkg/marketdata"
)

// Insider activity signals derived from the recent transaction tape.
const (
	SignalNetBuy  = "NET_BUY"
	SignalNetSell = "NET_SELL"
	SignalNeutral = "NEUTRAL"
)

// InsiderTransactionFact is one cleaned-up insider filing.
type InsiderTransactionFact struct {
	FilerName string   `json:"filerName"`
	Text      string   `json:"text"`
	Value     *float64 `json:"value"`
	Date      string   `json:"date"`
}

// InsiderActivity aggregates the insider tape into a directional signal.
type InsiderActivity struct {
	Buys      int                      `json:"buys"`
	Sells     int                      `json:"sells"`
	BuyValue  *float64                 `json:"buyValue"`
	SellValue *float64                 `json:"sellValue"`
	NetValue  *float64                 `json:"netValue"`
	Signal    string                   `json:"signal"`
	Recent    []InsiderTransactionFact `json:"recent"`
}

// ShareholderFacts is the ownership picture for the shareholder-structure
// section. Percent fields are in percent units, not fractions.
type ShareholderFacts struct {
	SharesOutstanding       *float64           `json:"sharesOutstanding"`
	FloatShares             *float64           `json:"floatShares"`
	InsidersPercentHeld     *float64           `json:"insidersPercentHeld"`
	InstitutionsPercentHeld *float64           `json:"institutionsPercentHeld"`
	RetailPercentHeld       *float64           `json:"retailPercentHeld"`
	TopHolders              []marketdata.Holder `json:"topHolders"`
	Insider                 InsiderActivity    `json:"insider"`
}

const maxRecentInsiderFilings = 10

// DeriveShareholder builds the ownership facts from the quote summary and
// the scraped holders table.
func DeriveShareholder(qs *marketdata.QuoteSummary, holders []marketdata.Holder) ShareholderFacts {
	f := ShareholderFacts{TopHolders: holders}

	if qs != nil {
		if k := qs.DefaultKeyStatistics; k != nil {
			f.SharesOutstanding = k.SharesOutstanding.Value()
			f.FloatShares = k.FloatShares.Value()
		}
		if b := qs.MajorHoldersBreakdown; b != nil {
			f.InsidersPercentHeld = asPercent(b.InsidersPercentHeld.Value())
			f.InstitutionsPercentHeld = asPercent(b.InstitutionsPercentHeld.Value())
		}
		if qs.InsiderTransactions != nil {
			f.Insider = summarizeInsiderTape(qs.InsiderTransactions.Transactions)
		} else {
			f.Insider.Signal = SignalNeutral
		}
	} else {
		f.Insider.Signal = SignalNeutral
	}

	if f.InsidersPercentHeld != nil && f.InstitutionsPercentHeld != nil {
		retail := 100 - *f.InsidersPercentHeld - *f.InstitutionsPercentHeld
		if retail < 0 {
			retail = 0
		}
		f.RetailPercentHeld = ptr(retail)
	}
	return f
}

// summarizeInsiderTape counts directional filings by their transaction
// text and nets the dollar values. The signal follows whichever side
// carries more value; equal or unpriced tapes are neutral.
func summarizeInsiderTape(txs []marketdata.InsiderTransaction) InsiderActivity {
	act := InsiderActivity{Signal: SignalNeutral}
	var buyValue, sellValue float64
	var priced bool

	for _, tx := range txs {
		text := ""
		if tx.TransactionText != nil {
			text = *tx.TransactionText
		}
		dir := classifyInsiderText(text)
		if dir == 0 {
			continue
		}

		value := tx.Value.Value()
		if dir > 0 {
			act.Buys++
			if value != nil {
				buyValue += *value
				priced = true
			}
		} else {
			act.Sells++
			if value != nil {
				sellValue += *value
				priced = true
			}
		}

		if len(act.Recent) < maxRecentInsiderFilings {
			fact := InsiderTransactionFact{Text: text, Value: value}
			if tx.FilerName != nil {
				fact.FilerName = *tx.FilerName
			}
			if ts := tx.StartDate.Value(); ts != nil {
				fact.Date = time.Unix(int64(*ts), 0).UTC().Format("2006-01-02")
			}
			act.Recent = append(act.Recent, fact)
		}
	}

	if priced {
		act.BuyValue = ptr(buyValue)
		act.SellValue = ptr(sellValue)
		act.NetValue = ptr(buyValue - sellValue)
		switch {
		case buyValue > sellValue:
			act.Signal = SignalNetBuy
		case sellValue > buyValue:
			act.Signal = SignalNetSell
		}
	} else if act.Buys != act.Sells {
		if act.Buys > act.Sells {
			act.Signal = SignalNetBuy
		} else {
			act.Signal = SignalNetSell
		}
	}
	return act
}

func classifyInsiderText(text string) int {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "purchase") || strings.Contains(t, "buy"):
		return 1
	case strings.Contains(t, "sale") || strings.Contains(t, "sell"):
		return -1
	default:
		return 0
	}
}

func asPercent(fraction *float64) *float64 {
	if fraction == nil {
		return nil
	}
	return ptr(*fraction * 100)
}
