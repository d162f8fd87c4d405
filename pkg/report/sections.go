// Package report assembles the research report: it derives the numeric
// facts, generates each section's narrative under a strict schema, and
// persists the assembled sections. Sections are independent; one failing
// never blocks the others.
package report

import (
	"fmt"
	"strings"
)

// Section names, also used as the stable keys in build outcomes.
const (
	SectionExecutiveSummary    = "executive_summary"
	SectionOverview            = "overview_and_stock_metrics"
	SectionShareholder         = "shareholder_structure"
	SectionAnalyst             = "analyst_recommendation"
	SectionEquityValuation     = "equity_valuation"
	SectionFinancialStatements = "financial_statement_analysis"
)

// AllSections lists every generatable section in report order.
func AllSections() []string {
	return []string{
		SectionExecutiveSummary,
		SectionOverview,
		SectionShareholder,
		SectionAnalyst,
		SectionEquityValuation,
		SectionFinancialStatements,
	}
}

// The payload types below are the JSON contracts the model must satisfy.
// Validate enforces required fields, exact row counts and enum values;
// anything Validate rejects becomes a schema error and is not retried.

type ExecutiveSummaryPayload struct {
	Summary   string `json:"summary"`
	Positives string `json:"positives"`
	Risks     string `json:"risks"`
}

func (p *ExecutiveSummaryPayload) Validate() error {
	if strings.TrimSpace(p.Summary) == "" {
		return fmt.Errorf("summary is empty")
	}
	if strings.TrimSpace(p.Positives) == "" {
		return fmt.Errorf("positives is empty")
	}
	if strings.TrimSpace(p.Risks) == "" {
		return fmt.Errorf("risks is empty")
	}
	return nil
}

type StockMetricPayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Note  string `json:"note"`
}

type OverviewPayload struct {
	FiftyTwoWeekPerformance string               `json:"fiftyTwoWeekPerformance"`
	StockMetrics            []StockMetricPayload `json:"stockMetrics"`
}

const overviewMetricCount = 8

func (p *OverviewPayload) Validate() error {
	if strings.TrimSpace(p.FiftyTwoWeekPerformance) == "" {
		return fmt.Errorf("fiftyTwoWeekPerformance is empty")
	}
	if len(p.StockMetrics) != overviewMetricCount {
		return fmt.Errorf("expected %d stock metrics, got %d", overviewMetricCount, len(p.StockMetrics))
	}
	for i, m := range p.StockMetrics {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("stock metric %d has no name", i)
		}
	}
	return nil
}

type MajorShareholderPayload struct {
	ShareholderType string `json:"shareholderType"`
	Ownership       string `json:"ownership"`
	Notes           string `json:"notes"`
}

type ShareholderPayload struct {
	TotalShares            string                    `json:"totalShares"`
	ShareCapitalNotes      string                    `json:"shareCapitalNotes"`
	KeyInsiderObservations []string                  `json:"keyInsiderObservations"`
	MajorShareholders      []MajorShareholderPayload `json:"majorShareholders"`
}

var shareholderTypes = []string{"Insiders", "Institutions", "Retail"}

func (p *ShareholderPayload) Validate() error {
	if err := checkObservations("keyInsiderObservations", p.KeyInsiderObservations); err != nil {
		return err
	}
	if len(p.MajorShareholders) != len(shareholderTypes) {
		return fmt.Errorf("expected %d shareholder rows, got %d", len(shareholderTypes), len(p.MajorShareholders))
	}
	for i, want := range shareholderTypes {
		if p.MajorShareholders[i].ShareholderType != want {
			return fmt.Errorf("shareholder row %d: expected type %q, got %q", i, want, p.MajorShareholders[i].ShareholderType)
		}
	}
	return nil
}

type ConsensusRowPayload struct {
	Rating            string `json:"rating"`
	Count             string `json:"count"`
	PercentageOfTotal string `json:"percentageOfTotal"`
	Trend             string `json:"trend"`
}

type ConsensusDetailPayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type AnalystPayload struct {
	RecentAnalystViews []string                 `json:"recentAnalystViews"`
	ConsensusRows      []ConsensusRowPayload    `json:"consensusRows"`
	ConsensusDetails   []ConsensusDetailPayload `json:"consensusDetails"`
}

var (
	consensusRatings = []string{"Strong Buy", "Buy", "Hold", "Sell"}
	consensusDetails = []string{"Consensus Rating", "Price Target (Mean)", "Price Target (High)", "Price Target (Low)", "Analyst Count"}
	consensusTrends  = map[string]bool{"UP": true, "DOWN": true, "FLAT": true}
)

func (p *AnalystPayload) Validate() error {
	if err := checkObservations("recentAnalystViews", p.RecentAnalystViews); err != nil {
		return err
	}
	if len(p.ConsensusRows) != len(consensusRatings) {
		return fmt.Errorf("expected %d consensus rows, got %d", len(consensusRatings), len(p.ConsensusRows))
	}
	for i, want := range consensusRatings {
		row := p.ConsensusRows[i]
		if row.Rating != want {
			return fmt.Errorf("consensus row %d: expected rating %q, got %q", i, want, row.Rating)
		}
		if !consensusTrends[row.Trend] {
			return fmt.Errorf("consensus row %d: invalid trend %q", i, row.Trend)
		}
	}
	if len(p.ConsensusDetails) != len(consensusDetails) {
		return fmt.Errorf("expected %d consensus details, got %d", len(consensusDetails), len(p.ConsensusDetails))
	}
	for i, want := range consensusDetails {
		if p.ConsensusDetails[i].Name != want {
			return fmt.Errorf("consensus detail %d: expected name %q, got %q", i, want, p.ConsensusDetails[i].Name)
		}
	}
	return nil
}

type AssumptionPayload struct {
	ModelName  string `json:"modelName"`
	Assumption string `json:"assumption"`
}

type ValuationPayload struct {
	KeyTakeaway string              `json:"keyTakeaway"`
	Assumptions []AssumptionPayload `json:"assumptions"`
}

var assumptionNames = []string{"WACC", "Terminal Growth", "Revenue Growth", "Forecast Horizon"}

func (p *ValuationPayload) Validate() error {
	if strings.TrimSpace(p.KeyTakeaway) == "" {
		return fmt.Errorf("keyTakeaway is empty")
	}
	if len(p.Assumptions) != len(assumptionNames) {
		return fmt.Errorf("expected %d assumptions, got %d", len(assumptionNames), len(p.Assumptions))
	}
	for i, want := range assumptionNames {
		if p.Assumptions[i].ModelName != want {
			return fmt.Errorf("assumption %d: expected model %q, got %q", i, want, p.Assumptions[i].ModelName)
		}
		if strings.TrimSpace(p.Assumptions[i].Assumption) == "" {
			return fmt.Errorf("assumption %d (%s) is empty", i, want)
		}
	}
	return nil
}

type StatementsPayload struct {
	KeyObservations         []string `json:"keyObservations"`
	CapitalPositionAnalysis []string `json:"capitalPositionAnalysis"`
	FcfQualityAnalysis      []string `json:"fcfQualityAnalysis"`
	ValuationObservations   []string `json:"valuationObservations"`
}

func (p *StatementsPayload) Validate() error {
	for _, group := range []struct {
		name  string
		items []string
	}{
		{"keyObservations", p.KeyObservations},
		{"capitalPositionAnalysis", p.CapitalPositionAnalysis},
		{"fcfQualityAnalysis", p.FcfQualityAnalysis},
		{"valuationObservations", p.ValuationObservations},
	} {
		if err := checkObservations(group.name, group.items); err != nil {
			return err
		}
	}
	return nil
}

const maxObservations = 6

func checkObservations(name string, items []string) error {
	if len(items) == 0 {
		return fmt.Errorf("%s is empty", name)
	}
	if len(items) > maxObservations {
		return fmt.Errorf("%s has %d entries, maximum is %d", name, len(items), maxObservations)
	}
	for i, s := range items {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s entry %d is blank", name, i)
		}
	}
	return nil
}
