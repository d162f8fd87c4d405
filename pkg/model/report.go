package model

import "time"

// Each section type below maps one-to-one onto a Company via a unique
// CompanyID. Presence of the row is the cache signal: a section is
// generated at most once per company, and child rows are only ever
// written together with their parent.

// ExecutiveSummary holds the narrative summary and investment thesis.
type ExecutiveSummary struct {
	ID        uint `gorm:"primaryKey"`
	CompanyID uint `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time

	Summary          *string `gorm:"type:text"`
	Positives        *string `gorm:"type:text"`
	Risks            *string `gorm:"type:text"`
	CurrentPrice     *string
	DcfFairValue     *string
	AnalystConsensus *string
	Upside           *string
}

// OverviewAndStockMetrics is the company overview section with its fixed
// set of eight metric rows.
type OverviewAndStockMetrics struct {
	ID        uint `gorm:"primaryKey"`
	CompanyID uint `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time

	FiftyTwoWeekPerformance string        `gorm:"type:text"`
	StockMetrics            []StockMetric `gorm:"constraint:OnDelete:CASCADE"`
}

type StockMetric struct {
	ID                        uint   `gorm:"primaryKey"`
	OverviewAndStockMetricsID uint   `gorm:"index;not null"`
	Name                      string `gorm:"size:64;not null"`
	Value                     string
	Note                      string `gorm:"type:text"`
}

// ShareholderStructure covers ownership breakdown and insider activity.
type ShareholderStructure struct {
	ID        uint `gorm:"primaryKey"`
	CompanyID uint `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time

	TotalShares            string
	ShareCapitalNotes      string             `gorm:"type:text"`
	KeyInsiderObservations []string           `gorm:"serializer:json"`
	MajorShareholders      []MajorShareholder `gorm:"constraint:OnDelete:CASCADE"`
}

type MajorShareholder struct {
	ID                     uint   `gorm:"primaryKey"`
	ShareholderStructureID uint   `gorm:"index;not null"`
	ShareholderType        string `gorm:"size:32;not null"`
	Ownership              string
	Notes                  string `gorm:"type:text"`
}

// AnalystRecommendation is the consensus section: four rating rows and
// five detail rows.
type AnalystRecommendation struct {
	ID        uint `gorm:"primaryKey"`
	CompanyID uint `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time

	RecentAnalystViews []string          `gorm:"serializer:json"`
	ConsensusRows      []ConsensusRow    `gorm:"constraint:OnDelete:CASCADE"`
	ConsensusDetails   []ConsensusDetail `gorm:"constraint:OnDelete:CASCADE"`
}

type ConsensusRow struct {
	ID                      uint   `gorm:"primaryKey"`
	AnalystRecommendationID uint   `gorm:"index;not null"`
	Rating                  string `gorm:"size:32;not null"`
	Count                   string
	PercentageOfTotal       string
	Trend                   string
}

type ConsensusDetail struct {
	ID                      uint   `gorm:"primaryKey"`
	AnalystRecommendationID uint   `gorm:"index;not null"`
	Name                    string `gorm:"size:32;not null"`
	Value                   string
}

// EquityValuation is the DCF section: four assumption rows, five projected
// years of eight metrics each, the valuation buildup and a 5x5
// WACC x terminal-growth sensitivity grid.
type EquityValuation struct {
	ID        uint `gorm:"primaryKey"`
	CompanyID uint `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time

	KeyTakeaway    string                   `gorm:"type:text"`
	Assumptions    []ValuationAssumption    `gorm:"constraint:OnDelete:CASCADE"`
	ProjectedYears []ProjectedFinancialYear `gorm:"constraint:OnDelete:CASCADE"`
	DcfBuildup     *DcfValuationBuildup     `gorm:"constraint:OnDelete:CASCADE"`
	SensitivityRow []SensitivityRow         `gorm:"constraint:OnDelete:CASCADE"`
}

type ValuationAssumption struct {
	ID                uint   `gorm:"primaryKey"`
	EquityValuationID uint   `gorm:"index;not null"`
	ModelName         string `gorm:"size:32;not null"`
	Assumption        string
}

type ProjectedFinancialYear struct {
	ID                uint   `gorm:"primaryKey"`
	EquityValuationID uint   `gorm:"index;not null"`
	FiscalYear        string `gorm:"size:16;not null"`

	Projections []Projection `gorm:"constraint:OnDelete:CASCADE"`
}

type Projection struct {
	ID                       uint   `gorm:"primaryKey"`
	ProjectedFinancialYearID uint   `gorm:"index;not null"`
	Metric                   string `gorm:"size:32;not null"`
	Value                    string
}

type DcfValuationBuildup struct {
	ID                uint `gorm:"primaryKey"`
	EquityValuationID uint `gorm:"uniqueIndex;not null"`

	PvOfFCF           string
	PvOfTerminalValue string
	EnterpriseValue   string
	NetDebt           string
	EquityValue       string
	FairValuePerShare string
	CurrentPrice      string
	ImpliedUpside     string
	Note              string `gorm:"type:text"`
}

type SensitivityRow struct {
	ID                uint   `gorm:"primaryKey"`
	EquityValuationID uint   `gorm:"index;not null"`
	Wacc              string `gorm:"size:8;not null"`

	Values []SensitivityValue `gorm:"constraint:OnDelete:CASCADE"`
}

type SensitivityValue struct {
	ID               uint   `gorm:"primaryKey"`
	SensitivityRowID uint   `gorm:"index;not null"`
	TerminalGrowth   string `gorm:"size:8;not null"`
	Value            string
}

// FinancialStatementAnalysis holds six fiscal years of statement tables
// plus the nine-metric ratio grid.
type FinancialStatementAnalysis struct {
	ID        uint `gorm:"primaryKey"`
	CompanyID uint `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time

	KeyObservations         []string `gorm:"serializer:json"`
	CapitalPositionAnalysis []string `gorm:"serializer:json"`
	FcfQualityAnalysis      []string `gorm:"serializer:json"`
	ValuationObservations   []string `gorm:"serializer:json"`

	IncomeStatementRows []IncomeStatementRow `gorm:"constraint:OnDelete:CASCADE"`
	BalanceSheetRows    []BalanceSheetRow    `gorm:"constraint:OnDelete:CASCADE"`
	CashFlowRows        []CashFlowRow        `gorm:"constraint:OnDelete:CASCADE"`
	RatioMetrics        []RatioMetric        `gorm:"constraint:OnDelete:CASCADE"`
}

type IncomeStatementRow struct {
	ID                           uint   `gorm:"primaryKey"`
	FinancialStatementAnalysisID uint   `gorm:"index;not null"`
	FiscalYear                   string `gorm:"size:16;not null"`
	Revenue                      string
	YoyGrowth                    string
	OperatingIncome              string
	NetIncome                    string
	EPS                          string
}

type BalanceSheetRow struct {
	ID                           uint   `gorm:"primaryKey"`
	FinancialStatementAnalysisID uint   `gorm:"index;not null"`
	FiscalYear                   string `gorm:"size:16;not null"`
	Cash                         string
	TotalAssets                  string
	TotalDebt                    string
	ShareholdersEquity           string
	DebtToEquity                 string
}

type CashFlowRow struct {
	ID                           uint   `gorm:"primaryKey"`
	FinancialStatementAnalysisID uint   `gorm:"index;not null"`
	FiscalYear                   string `gorm:"size:16;not null"`
	OperatingCF                  string
	Capex                        string
	FreeCF                       string
	FcfMargin                    string
	DividendsPaid                string
	ShareBuyback                 string
}

type RatioMetric struct {
	ID                           uint   `gorm:"primaryKey"`
	FinancialStatementAnalysisID uint   `gorm:"index;not null"`
	Metric                       string `gorm:"size:32;not null"`

	Values []RatioValue `gorm:"constraint:OnDelete:CASCADE"`
}

type RatioValue struct {
	ID            uint   `gorm:"primaryKey"`
	RatioMetricID uint   `gorm:"index;not null"`
	FiscalYear    string `gorm:"size:16;not null"`
	Value         string
}
