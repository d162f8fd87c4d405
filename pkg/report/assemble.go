package report

import (
	"strings"

	"equity_research/pkg/model"
	"equity_research/pkg/quant"
)

// The assemblers combine the generated narrative with the deterministic
// numbers. Narrative fields come from the validated payload; every figure
// a table shows is formatted here from the derived facts, never taken from
// the model output.

func strptr(s string) *string { return &s }

func assembleExecutive(companyID uint, p *ExecutiveSummaryPayload, facts quant.ExecutiveFacts) *model.ExecutiveSummary {
	return &model.ExecutiveSummary{
		CompanyID:        companyID,
		Summary:          strptr(p.Summary),
		Positives:        strptr(p.Positives),
		Risks:            strptr(p.Risks),
		CurrentPrice:     strptr(quant.FormatValue(facts.CurrentPrice, quant.FormatCurrency)),
		DcfFairValue:     strptr(quant.FormatValue(facts.DcfFairValue, quant.FormatCurrency)),
		AnalystConsensus: strptr(consensusLabel(facts.AnalystConsensus)),
		Upside:           strptr(quant.FormatSigned(facts.ImpliedUpside)),
	}
}

// consensusLabel turns Yahoo's snake_case recommendation key into a
// display label ("strong_buy" -> "Strong Buy").
func consensusLabel(key *string) string {
	if key == nil || *key == "" {
		return quant.Missing
	}
	words := strings.Split(strings.ReplaceAll(*key, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func assembleOverview(companyID uint, p *OverviewPayload) *model.OverviewAndStockMetrics {
	section := &model.OverviewAndStockMetrics{
		CompanyID:               companyID,
		FiftyTwoWeekPerformance: p.FiftyTwoWeekPerformance,
	}
	for _, m := range p.StockMetrics {
		section.StockMetrics = append(section.StockMetrics, model.StockMetric{
			Name:  m.Name,
			Value: m.Value,
			Note:  m.Note,
		})
	}
	return section
}

func assembleShareholder(companyID uint, p *ShareholderPayload) *model.ShareholderStructure {
	section := &model.ShareholderStructure{
		CompanyID:              companyID,
		TotalShares:            p.TotalShares,
		ShareCapitalNotes:      p.ShareCapitalNotes,
		KeyInsiderObservations: p.KeyInsiderObservations,
	}
	for _, s := range p.MajorShareholders {
		section.MajorShareholders = append(section.MajorShareholders, model.MajorShareholder{
			ShareholderType: s.ShareholderType,
			Ownership:       s.Ownership,
			Notes:           s.Notes,
		})
	}
	return section
}

func assembleAnalyst(companyID uint, p *AnalystPayload) *model.AnalystRecommendation {
	section := &model.AnalystRecommendation{
		CompanyID:          companyID,
		RecentAnalystViews: p.RecentAnalystViews,
	}
	for _, r := range p.ConsensusRows {
		section.ConsensusRows = append(section.ConsensusRows, model.ConsensusRow{
			Rating:            r.Rating,
			Count:             r.Count,
			PercentageOfTotal: r.PercentageOfTotal,
			Trend:             r.Trend,
		})
	}
	for _, d := range p.ConsensusDetails {
		section.ConsensusDetails = append(section.ConsensusDetails, model.ConsensusDetail{
			Name:  d.Name,
			Value: d.Value,
		})
	}
	return section
}

func assembleValuation(companyID uint, p *ValuationPayload, facts quant.ValuationFacts) *model.EquityValuation {
	section := &model.EquityValuation{
		CompanyID:   companyID,
		KeyTakeaway: p.KeyTakeaway,
	}
	for _, a := range p.Assumptions {
		section.Assumptions = append(section.Assumptions, model.ValuationAssumption{
			ModelName:  a.ModelName,
			Assumption: a.Assumption,
		})
	}

	for _, year := range facts.Projections {
		fy := model.ProjectedFinancialYear{FiscalYear: year.FiscalYear}
		fy.Projections = []model.Projection{
			{Metric: "Revenue", Value: quant.FormatValue(year.Revenue, quant.FormatCurrencyCompact)},
			{Metric: "Revenue Growth", Value: quant.FormatPercent(year.RevenueGrowthPct)},
			{Metric: "Operating Income", Value: quant.FormatValue(year.OperatingIncome, quant.FormatCurrencyCompact)},
			{Metric: "Net Income", Value: quant.FormatValue(year.NetIncome, quant.FormatCurrencyCompact)},
			{Metric: "Free Cash Flow", Value: quant.FormatValue(year.FreeCashFlow, quant.FormatCurrencyCompact)},
			{Metric: "FCF Margin", Value: quant.FormatPercent(year.FCFMarginPct)},
			{Metric: "Discount Factor", Value: quant.FormatValue(year.DiscountFactor, quant.FormatNumber)},
			{Metric: "Present Value", Value: quant.FormatValue(year.PresentValue, quant.FormatCurrencyCompact)},
		}
		section.ProjectedYears = append(section.ProjectedYears, fy)
	}

	section.DcfBuildup = &model.DcfValuationBuildup{
		PvOfFCF:           quant.FormatValue(facts.Dcf.PvOfFCF, quant.FormatCurrencyCompact),
		PvOfTerminalValue: quant.FormatValue(facts.Dcf.PvOfTerminalValue, quant.FormatCurrencyCompact),
		EnterpriseValue:   quant.FormatValue(facts.Dcf.EnterpriseValue, quant.FormatCurrencyCompact),
		NetDebt:           quant.FormatValue(facts.Dcf.NetDebt, quant.FormatCurrencyCompact),
		EquityValue:       quant.FormatValue(facts.Dcf.EquityValue, quant.FormatCurrencyCompact),
		FairValuePerShare: quant.FormatValue(facts.Dcf.FairValuePerShare, quant.FormatCurrency),
		CurrentPrice:      quant.FormatValue(facts.CurrentPrice, quant.FormatCurrency),
		ImpliedUpside:     quant.FormatSigned(facts.Dcf.ImpliedUpside),
		Note:              buildupNote(facts),
	}

	for _, row := range facts.Sensitivity {
		if len(row) == 0 {
			continue
		}
		sr := model.SensitivityRow{
			Wacc: quant.FormatValue(&row[0].WACC, quant.FormatPercentage),
		}
		for _, cell := range row {
			g := cell.TerminalGrowth
			sr.Values = append(sr.Values, model.SensitivityValue{
				TerminalGrowth: quant.FormatValue(&g, quant.FormatPercentage),
				Value:          quant.FormatValue(cell.FairValue, quant.FormatCurrency),
			})
		}
		section.SensitivityRow = append(section.SensitivityRow, sr)
	}
	return section
}

func buildupNote(facts quant.ValuationFacts) string {
	if facts.BaseFCF == nil {
		return "No trailing free cash flow was available, so the model could not produce a fair value."
	}
	if facts.Wacc.WACC == nil {
		return "WACC could not be computed from the capital structure; the configured fallback rate was used."
	}
	return ""
}

func assembleStatements(companyID uint, p *StatementsPayload, facts quant.StatementFacts) *model.FinancialStatementAnalysis {
	section := &model.FinancialStatementAnalysis{
		CompanyID:               companyID,
		KeyObservations:         p.KeyObservations,
		CapitalPositionAnalysis: p.CapitalPositionAnalysis,
		FcfQualityAnalysis:      p.FcfQualityAnalysis,
		ValuationObservations:   p.ValuationObservations,
	}

	for _, y := range facts.IncomeYears {
		section.IncomeStatementRows = append(section.IncomeStatementRows, model.IncomeStatementRow{
			FiscalYear:      y.FiscalYear,
			Revenue:         quant.FormatValue(y.Revenue, quant.FormatCurrencyCompact),
			YoyGrowth:       quant.FormatPercent(y.YoyGrowthPct),
			OperatingIncome: quant.FormatValue(y.OperatingIncome, quant.FormatCurrencyCompact),
			NetIncome:       quant.FormatValue(y.NetIncome, quant.FormatCurrencyCompact),
			EPS:             quant.FormatValue(y.EPS, quant.FormatCurrency),
		})
	}
	for _, y := range facts.BalanceYears {
		section.BalanceSheetRows = append(section.BalanceSheetRows, model.BalanceSheetRow{
			FiscalYear:         y.FiscalYear,
			Cash:               quant.FormatValue(y.Cash, quant.FormatCurrencyCompact),
			TotalAssets:        quant.FormatValue(y.TotalAssets, quant.FormatCurrencyCompact),
			TotalDebt:          quant.FormatValue(y.TotalLiabilities, quant.FormatCurrencyCompact),
			ShareholdersEquity: quant.FormatValue(y.ShareholdersEquity, quant.FormatCurrencyCompact),
			DebtToEquity:       quant.FormatValue(y.DebtToEquity, quant.FormatNumber),
		})
	}
	for _, y := range facts.CashFlowYears {
		section.CashFlowRows = append(section.CashFlowRows, model.CashFlowRow{
			FiscalYear:    y.FiscalYear,
			OperatingCF:   quant.FormatValue(y.OperatingCF, quant.FormatCurrencyCompact),
			Capex:         quant.FormatValue(y.Capex, quant.FormatCurrencyCompact),
			FreeCF:        quant.FormatValue(y.FreeCF, quant.FormatCurrencyCompact),
			FcfMargin:     quant.FormatPercent(y.FCFMarginPct),
			DividendsPaid: quant.FormatValue(y.DividendsPaid, quant.FormatCurrencyCompact),
			ShareBuyback:  quant.FormatValue(y.ShareBuyback, quant.FormatCurrencyCompact),
		})
	}
	for _, r := range facts.Ratios {
		rm := model.RatioMetric{Metric: r.Metric}
		for _, v := range r.Values {
			value := quant.FormatPercent(v.Value)
			if r.Metric == "Debt to Equity" {
				value = quant.FormatValue(v.Value, quant.FormatNumber)
			}
			rm.Values = append(rm.Values, model.RatioValue{
				FiscalYear: v.FiscalYear,
				Value:      value,
			})
		}
		section.RatioMetrics = append(section.RatioMetrics, rm)
	}
	return section
}
