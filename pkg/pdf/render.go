// Package pdf renders a persisted report to a downloadable PDF: the
// report tree becomes markdown, goldmark turns it into an HTML document,
// and the file-conversion engine returns the binary.
package pdf

import (
	"fmt"
	"strings"

	"equity_research/pkg/model"
)

// RenderMarkdown lays the report out as a markdown document, section by
// section in report order. Sections not yet generated are skipped.
func RenderMarkdown(company *model.Company) string {
	var b strings.Builder

	name := company.Symbol
	if company.CompanyName != nil && *company.CompanyName != "" {
		name = fmt.Sprintf("%s (%s)", *company.CompanyName, company.Symbol)
	}
	fmt.Fprintf(&b, "# Equity Research Report: %s\n\n", name)

	if s := company.ExecutiveSummary; s != nil {
		b.WriteString("## Executive Summary\n\n")
		writePara(&b, s.Summary)
		writeField(&b, "Current Price", s.CurrentPrice)
		writeField(&b, "DCF Fair Value", s.DcfFairValue)
		writeField(&b, "Analyst Consensus", s.AnalystConsensus)
		writeField(&b, "Implied Upside", s.Upside)
		b.WriteString("\n### Positives\n\n")
		writePara(&b, s.Positives)
		b.WriteString("### Risks\n\n")
		writePara(&b, s.Risks)
	}

	if s := company.Overview; s != nil {
		b.WriteString("## Overview and Stock Metrics\n\n")
		b.WriteString(s.FiftyTwoWeekPerformance + "\n\n")
		b.WriteString("| Metric | Value | Note |\n|---|---|---|\n")
		for _, m := range s.StockMetrics {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", m.Name, m.Value, m.Note)
		}
		b.WriteString("\n")
	}

	if s := company.ShareholderStructure; s != nil {
		b.WriteString("## Shareholder Structure\n\n")
		fmt.Fprintf(&b, "**Total Shares:** %s\n\n", s.TotalShares)
		b.WriteString(s.ShareCapitalNotes + "\n\n")
		b.WriteString("| Shareholder Type | Ownership | Notes |\n|---|---|---|\n")
		for _, h := range s.MajorShareholders {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", h.ShareholderType, h.Ownership, h.Notes)
		}
		b.WriteString("\n### Key Insider Observations\n\n")
		writeList(&b, s.KeyInsiderObservations)
	}

	if s := company.AnalystRecommendation; s != nil {
		b.WriteString("## Analyst Recommendation\n\n")
		b.WriteString("| Rating | Count | % of Total | Trend |\n|---|---|---|---|\n")
		for _, r := range s.ConsensusRows {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", r.Rating, r.Count, r.PercentageOfTotal, r.Trend)
		}
		b.WriteString("\n")
		for _, d := range s.ConsensusDetails {
			fmt.Fprintf(&b, "- **%s:** %s\n", d.Name, d.Value)
		}
		b.WriteString("\n### Recent Analyst Views\n\n")
		writeList(&b, s.RecentAnalystViews)
	}

	if s := company.EquityValuation; s != nil {
		b.WriteString("## Equity Valuation\n\n")
		b.WriteString(s.KeyTakeaway + "\n\n")

		b.WriteString("### Model Assumptions\n\n")
		for _, a := range s.Assumptions {
			fmt.Fprintf(&b, "- **%s:** %s\n", a.ModelName, a.Assumption)
		}
		b.WriteString("\n")

		if len(s.ProjectedYears) > 0 {
			b.WriteString("### Projected Financials\n\n")
			writeProjections(&b, s.ProjectedYears)
		}

		if d := s.DcfBuildup; d != nil {
			b.WriteString("### DCF Valuation Buildup\n\n")
			rows := [][2]string{
				{"PV of Forecast FCF", d.PvOfFCF},
				{"PV of Terminal Value", d.PvOfTerminalValue},
				{"Enterprise Value", d.EnterpriseValue},
				{"Net Debt", d.NetDebt},
				{"Equity Value", d.EquityValue},
				{"Fair Value per Share", d.FairValuePerShare},
				{"Current Price", d.CurrentPrice},
				{"Implied Upside", d.ImpliedUpside},
			}
			b.WriteString("| Item | Value |\n|---|---|\n")
			for _, row := range rows {
				fmt.Fprintf(&b, "| %s | %s |\n", row[0], row[1])
			}
			if d.Note != "" {
				b.WriteString("\n" + d.Note + "\n")
			}
			b.WriteString("\n")
		}

		if len(s.SensitivityRow) > 0 {
			b.WriteString("### Sensitivity (WACC x Terminal Growth)\n\n")
			writeSensitivity(&b, s.SensitivityRow)
		}
	}

	if s := company.FinancialStatementAnalysis; s != nil {
		b.WriteString("## Financial Statement Analysis\n\n")

		b.WriteString("### Income Statement\n\n")
		b.WriteString("| Fiscal Year | Revenue | YoY Growth | Operating Income | Net Income | EPS |\n|---|---|---|---|---|---|\n")
		for _, r := range s.IncomeStatementRows {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				r.FiscalYear, r.Revenue, r.YoyGrowth, r.OperatingIncome, r.NetIncome, r.EPS)
		}
		b.WriteString("\n### Balance Sheet\n\n")
		b.WriteString("| Fiscal Year | Cash | Total Assets | Total Debt | Equity | D/E |\n|---|---|---|---|---|---|\n")
		for _, r := range s.BalanceSheetRows {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				r.FiscalYear, r.Cash, r.TotalAssets, r.TotalDebt, r.ShareholdersEquity, r.DebtToEquity)
		}
		b.WriteString("\n### Cash Flow\n\n")
		b.WriteString("| Fiscal Year | Operating CF | Capex | Free CF | FCF Margin | Dividends | Buybacks |\n|---|---|---|---|---|---|---|\n")
		for _, r := range s.CashFlowRows {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				r.FiscalYear, r.OperatingCF, r.Capex, r.FreeCF, r.FcfMargin, r.DividendsPaid, r.ShareBuyback)
		}
		b.WriteString("\n### Key Observations\n\n")
		writeList(&b, s.KeyObservations)
		b.WriteString("### Capital Position\n\n")
		writeList(&b, s.CapitalPositionAnalysis)
		b.WriteString("### Free Cash Flow Quality\n\n")
		writeList(&b, s.FcfQualityAnalysis)
		b.WriteString("### Valuation Observations\n\n")
		writeList(&b, s.ValuationObservations)
	}

	return b.String()
}

func writePara(b *strings.Builder, s *string) {
	if s != nil && *s != "" {
		b.WriteString(*s + "\n\n")
	}
}

func writeField(b *strings.Builder, label string, v *string) {
	if v != nil && *v != "" {
		fmt.Fprintf(b, "- **%s:** %s\n", label, *v)
	}
}

func writeList(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
	b.WriteString("\n")
}

// writeProjections pivots the per-year metric rows into a metric-by-year
// table.
func writeProjections(b *strings.Builder, years []model.ProjectedFinancialYear) {
	if len(years) == 0 {
		return
	}
	b.WriteString("| Metric |")
	for _, y := range years {
		fmt.Fprintf(b, " %s |", y.FiscalYear)
	}
	b.WriteString("\n|---|")
	for range years {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for _, p := range years[0].Projections {
		fmt.Fprintf(b, "| %s |", p.Metric)
		for _, y := range years {
			value := "—"
			for _, yp := range y.Projections {
				if yp.Metric == p.Metric {
					value = yp.Value
					break
				}
			}
			fmt.Fprintf(b, " %s |", value)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeSensitivity(b *strings.Builder, rows []model.SensitivityRow) {
	if len(rows) == 0 || len(rows[0].Values) == 0 {
		return
	}
	b.WriteString("| WACC \\ g |")
	for _, v := range rows[0].Values {
		fmt.Fprintf(b, " %s |", v.TerminalGrowth)
	}
	b.WriteString("\n|---|")
	for range rows[0].Values {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, row := range rows {
		fmt.Fprintf(b, "| %s |", row.Wacc)
		for _, v := range row.Values {
			fmt.Fprintf(b, " %s |", v.Value)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
