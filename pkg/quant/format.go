package quant

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format tokens used across dashboard metrics and report tables.
const (
	FormatCurrency        = "currency"
	FormatPercentage      = "percentage"
	FormatCompact         = "compact"
	FormatCurrencyCompact = "currencyCompact"
	FormatNumber          = "number"
)

// Missing is the placeholder every formatter emits for an absent value.
const Missing = "—"

// FormatValue renders a possibly-absent number with the given token.
// Percentage input is a fraction (0.0825 -> "8.25%"); compact forms scale
// to K/M/B/T.
func FormatValue(v *float64, format string) string {
	if v == nil {
		return Missing
	}
	switch format {
	case FormatCurrency:
		return "$" + withThousands(*v, 2)
	case FormatPercentage:
		return strconv.FormatFloat(*v*100, 'f', 2, 64) + "%"
	case FormatCompact:
		return compact(*v)
	case FormatCurrencyCompact:
		return "$" + compact(*v)
	case FormatNumber:
		return withThousands(*v, 2)
	default:
		return strconv.FormatFloat(*v, 'f', 2, 64)
	}
}

// FormatPercent renders a value already expressed in percent units
// (8.25 -> "8.25%").
func FormatPercent(v *float64) string {
	if v == nil {
		return Missing
	}
	return strconv.FormatFloat(*v, 'f', 2, 64) + "%"
}

func compact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e12:
		return trimZeros(v/1e12) + "T"
	case abs >= 1e9:
		return trimZeros(v/1e9) + "B"
	case abs >= 1e6:
		return trimZeros(v/1e6) + "M"
	case abs >= 1e3:
		return trimZeros(v/1e3) + "K"
	default:
		return trimZeros(v)
	}
}

func trimZeros(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func withThousands(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// FormatFiscalYear renders "FY24" style labels from an ISO date.
func FormatFiscalYear(date string) string {
	if len(date) >= 4 {
		return "FY" + date[2:4]
	}
	return date
}

// FormatSigned prefixes positive values with "+", used for upside and
// growth figures (input is a fraction).
func FormatSigned(v *float64) string {
	if v == nil {
		return Missing
	}
	s := fmt.Sprintf("%.1f%%", *v*100)
	if *v > 0 {
		return "+" + s
	}
	return s
}
