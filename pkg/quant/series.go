package quant

import (
	"strings"

	"equity_research/pkg/marketdata"
)

// YTDReturn compares the latest close to the first session of that
// calendar year. Bars are newest first, as the gateway returns them.
func YTDReturn(bars []marketdata.DailyBar) *float64 {
	if len(bars) == 0 {
		return nil
	}
	latest := bars[0]
	year := yearOf(latest.Date)
	if year == "" {
		return nil
	}

	// Walk back to the oldest bar still inside the year.
	var first *marketdata.DailyBar
	for i := range bars {
		if yearOf(bars[i].Date) != year {
			break
		}
		first = &bars[i]
	}
	if first == nil || first.Close == 0 || first.Date == latest.Date {
		return nil
	}
	return ptr((latest.Close - first.Close) / first.Close * 100)
}

// FiftyTwoWeekRange scans the trailing window of the daily series for its
// high and low. Bars are newest first.
func FiftyTwoWeekRange(bars []marketdata.DailyBar) (high, low *float64) {
	window := bars
	if len(window) > tradingSessionsPerYear {
		window = window[:tradingSessionsPerYear]
	}
	for _, b := range window {
		if high == nil || b.Close > *high {
			high = ptr(b.Close)
		}
		if low == nil || b.Close < *low {
			low = ptr(b.Close)
		}
	}
	return high, low
}

func yearOf(date string) string {
	if i := strings.IndexByte(date, '-'); i > 0 {
		return date[:i]
	}
	return ""
}
