package report

import (
	"strings"
	"testing"
)

func validOverview() *OverviewPayload {
	p := &OverviewPayload{FiftyTwoWeekPerformance: "Traded in a wide band."}
	for i := 0; i < 8; i++ {
		p.StockMetrics = append(p.StockMetrics, StockMetricPayload{Name: "Metric", Value: "1.0"})
	}
	return p
}

func validShareholder() *ShareholderPayload {
	return &ShareholderPayload{
		TotalShares:            "1.2B",
		KeyInsiderObservations: []string{"Insiders net bought over the last quarter."},
		MajorShareholders: []MajorShareholderPayload{
			{ShareholderType: "Insiders", Ownership: "5%"},
			{ShareholderType: "Institutions", Ownership: "70%"},
			{ShareholderType: "Retail", Ownership: "25%"},
		},
	}
}

func validAnalyst() *AnalystPayload {
	return &AnalystPayload{
		RecentAnalystViews: []string{"Coverage skews positive."},
		ConsensusRows: []ConsensusRowPayload{
			{Rating: "Strong Buy", Count: "10", PercentageOfTotal: "25%", Trend: "UP"},
			{Rating: "Buy", Count: "20", PercentageOfTotal: "50%", Trend: "FLAT"},
			{Rating: "Hold", Count: "8", PercentageOfTotal: "20%", Trend: "DOWN"},
			{Rating: "Sell", Count: "2", PercentageOfTotal: "5%", Trend: "FLAT"},
		},
		ConsensusDetails: []ConsensusDetailPayload{
			{Name: "Consensus Rating", Value: "Buy"},
			{Name: "Price Target (Mean)", Value: "$150.00"},
			{Name: "Price Target (High)", Value: "$180.00"},
			{Name: "Price Target (Low)", Value: "$120.00"},
			{Name: "Analyst Count", Value: "40"},
		},
	}
}

func validValuation() *ValuationPayload {
	return &ValuationPayload{
		KeyTakeaway: "Shares trade below modeled fair value.",
		Assumptions: []AssumptionPayload{
			{ModelName: "WACC", Assumption: "8.5% blended cost of capital"},
			{ModelName: "Terminal Growth", Assumption: "4% perpetual growth"},
			{ModelName: "Revenue Growth", Assumption: "12% through the forecast"},
			{ModelName: "Forecast Horizon", Assumption: "5 explicit years"},
		},
	}
}

func TestExecutiveSummaryValidate(t *testing.T) {
	p := &ExecutiveSummaryPayload{Summary: "s", Positives: "p", Risks: "r"}
	if err := p.Validate(); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
	p.Risks = "   "
	if err := p.Validate(); err == nil {
		t.Error("blank risks should be rejected")
	}
}

func TestOverviewValidate(t *testing.T) {
	if err := validOverview().Validate(); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	p := validOverview()
	p.StockMetrics = p.StockMetrics[:7]
	if err := p.Validate(); err == nil || !strings.Contains(err.Error(), "8 stock metrics") {
		t.Errorf("short metric table should be rejected, got %v", err)
	}

	p = validOverview()
	p.StockMetrics[3].Name = ""
	if err := p.Validate(); err == nil {
		t.Error("unnamed metric should be rejected")
	}

	p = validOverview()
	p.FiftyTwoWeekPerformance = ""
	if err := p.Validate(); err == nil {
		t.Error("empty performance narrative should be rejected")
	}
}

func TestShareholderValidate(t *testing.T) {
	if err := validShareholder().Validate(); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	p := validShareholder()
	p.MajorShareholders[0], p.MajorShareholders[1] = p.MajorShareholders[1], p.MajorShareholders[0]
	if err := p.Validate(); err == nil {
		t.Error("out-of-order shareholder types should be rejected")
	}

	p = validShareholder()
	p.MajorShareholders = p.MajorShareholders[:2]
	if err := p.Validate(); err == nil {
		t.Error("missing shareholder row should be rejected")
	}

	p = validShareholder()
	p.KeyInsiderObservations = nil
	if err := p.Validate(); err == nil {
		t.Error("no insider observations should be rejected")
	}
}

func TestAnalystValidate(t *testing.T) {
	if err := validAnalyst().Validate(); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	p := validAnalyst()
	p.ConsensusRows[1].Trend = "SIDEWAYS"
	if err := p.Validate(); err == nil || !strings.Contains(err.Error(), "invalid trend") {
		t.Errorf("invalid trend enum should be rejected, got %v", err)
	}

	p = validAnalyst()
	p.ConsensusRows[3].Rating = "Strong Sell"
	if err := p.Validate(); err == nil {
		t.Error("unexpected rating label should be rejected")
	}

	p = validAnalyst()
	p.ConsensusDetails[1].Name = "Mean Target"
	if err := p.Validate(); err == nil {
		t.Error("renamed consensus detail should be rejected")
	}

	p = validAnalyst()
	p.ConsensusDetails = append(p.ConsensusDetails, ConsensusDetailPayload{Name: "Extra", Value: "x"})
	if err := p.Validate(); err == nil {
		t.Error("extra consensus detail should be rejected")
	}
}

func TestValuationValidate(t *testing.T) {
	if err := validValuation().Validate(); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	p := validValuation()
	p.Assumptions[0].ModelName = "Discount Rate"
	if err := p.Validate(); err == nil {
		t.Error("renamed assumption should be rejected")
	}

	p = validValuation()
	p.Assumptions[2].Assumption = ""
	if err := p.Validate(); err == nil {
		t.Error("empty assumption text should be rejected")
	}

	p = validValuation()
	p.KeyTakeaway = ""
	if err := p.Validate(); err == nil {
		t.Error("missing takeaway should be rejected")
	}
}

func TestStatementsValidate(t *testing.T) {
	valid := func() *StatementsPayload {
		return &StatementsPayload{
			KeyObservations:         []string{"Revenue compounding in the teens."},
			CapitalPositionAnalysis: []string{"Net cash balance sheet."},
			FcfQualityAnalysis:      []string{"Cash conversion above 90%."},
			ValuationObservations:   []string{"Multiple in line with peers."},
		}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	p := valid()
	p.FcfQualityAnalysis = nil
	if err := p.Validate(); err == nil {
		t.Error("empty analysis group should be rejected")
	}

	p = valid()
	p.KeyObservations = []string{"a", "b", "c", "d", "e", "f", "g"}
	if err := p.Validate(); err == nil || !strings.Contains(err.Error(), "maximum") {
		t.Errorf("oversized observation list should be rejected, got %v", err)
	}

	p = valid()
	p.ValuationObservations = []string{"fine", "  "}
	if err := p.Validate(); err == nil {
		t.Error("blank observation entry should be rejected")
	}
}

func TestAllSectionsOrder(t *testing.T) {
	sections := AllSections()
	if len(sections) != 6 {
		t.Fatalf("expected 6 sections, got %d", len(sections))
	}
	if sections[0] != SectionExecutiveSummary {
		t.Errorf("executive summary should lead the report, got %s", sections[0])
	}
	if sections[5] != SectionFinancialStatements {
		t.Errorf("statements should close the report, got %s", sections[5])
	}
}
