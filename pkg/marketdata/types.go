package marketdata

import (
	"context"
	"strconv"
	"strings"
)

// Gateway is the read-only capability the report pipeline depends on.
// Every method is best-effort: a nil/empty result with an error means "no
// data for this field set", and callers must treat every field as
// potentially absent.
type Gateway interface {
	// Alpha Vantage backed endpoints.
	Profile(ctx context.Context, symbol string) (*CompanyProfile, error)
	DailySeries(ctx context.Context, symbol string) ([]DailyBar, error)
	QuarterlyIncome(ctx context.Context, symbol string) ([]QuarterlyReport, error)
	QuarterlyBalance(ctx context.Context, symbol string) ([]QuarterlyReport, error)
	QuarterlyCashFlow(ctx context.Context, symbol string) ([]QuarterlyReport, error)
	Search(ctx context.Context, query string) ([]SearchMatch, error)

	// Yahoo Finance backed endpoints.
	QuoteSummary(ctx context.Context, symbol string, modules []string) (*QuoteSummary, error)
	Chart(ctx context.Context, symbol string, years int, withDividends bool) (*ChartResult, error)
	MajorHolders(ctx context.Context, symbol string) ([]Holder, error)
}

// Num is Yahoo's wrapped numeric value ({"raw": 123.4, "fmt": "123.40"}).
// A missing or empty object decodes to a nil Raw.
type Num struct {
	Raw *float64 `json:"raw"`
}

// Value returns the unwrapped pointer, nil-safe on a nil receiver.
func (n *Num) Value() *float64 {
	if n == nil {
		return nil
	}
	return n.Raw
}

// QuoteSummary mirrors the subset of Yahoo quoteSummary modules the
// derivation engine consumes. Absent modules stay nil.
type QuoteSummary struct {
	Price                *PriceModule                `json:"price"`
	SummaryDetail        *SummaryDetailModule        `json:"summaryDetail"`
	FinancialData        *FinancialDataModule        `json:"financialData"`
	DefaultKeyStatistics *KeyStatisticsModule        `json:"defaultKeyStatistics"`
	AssetProfile         *AssetProfileModule         `json:"assetProfile"`
	IncomeHistory        *IncomeStatementHistory     `json:"incomeStatementHistory"`
	BalanceHistory       *BalanceSheetHistory        `json:"balanceSheetHistory"`
	CashflowHistory      *CashflowStatementHistory   `json:"cashflowStatementHistory"`
	RecommendationTrend  *RecommendationTrendModule  `json:"recommendationTrend"`
	MajorHoldersBreakdown *MajorHoldersBreakdownModule `json:"majorHoldersBreakdown"`
	InsiderTransactions  *InsiderTransactionsModule  `json:"insiderTransactions"`
}

type PriceModule struct {
	RegularMarketPrice *Num    `json:"regularMarketPrice"`
	RegularMarketTime  *int64  `json:"regularMarketTime"`
	MarketCap          *Num    `json:"marketCap"`
	Currency           *string `json:"currency"`
	LongName           *string `json:"longName"`
	ExchangeName       *string `json:"exchangeName"`
}

type SummaryDetailModule struct {
	TrailingPE       *Num `json:"trailingPE"`
	ForwardPE        *Num `json:"forwardPE"`
	DividendYield    *Num `json:"dividendYield"`
	DividendRate     *Num `json:"dividendRate"`
	PayoutRatio      *Num `json:"payoutRatio"`
	FiftyTwoWeekHigh *Num `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  *Num `json:"fiftyTwoWeekLow"`
}

type FinancialDataModule struct {
	TargetMeanPrice         *Num    `json:"targetMeanPrice"`
	TargetMedianPrice       *Num    `json:"targetMedianPrice"`
	TargetHighPrice         *Num    `json:"targetHighPrice"`
	TargetLowPrice          *Num    `json:"targetLowPrice"`
	NumberOfAnalystOpinions *Num    `json:"numberOfAnalystOpinions"`
	RecommendationKey       *string `json:"recommendationKey"`
	FreeCashflow            *Num    `json:"freeCashflow"`
	TotalDebt               *Num    `json:"totalDebt"`
	TotalCash               *Num    `json:"totalCash"`
	TotalRevenue            *Num    `json:"totalRevenue"`
	RevenueGrowth           *Num    `json:"revenueGrowth"`
	EarningsGrowth          *Num    `json:"earningsGrowth"`
	ReturnOnEquity          *Num    `json:"returnOnEquity"`
	OperatingMargins        *Num    `json:"operatingMargins"`
	ProfitMargins           *Num    `json:"profitMargins"`
	GrossMargins            *Num    `json:"grossMargins"`
	CurrentRatio            *Num    `json:"currentRatio"`
	QuickRatio              *Num    `json:"quickRatio"`
	Ebitda                  *Num    `json:"ebitda"`
}

type KeyStatisticsModule struct {
	Beta                *Num `json:"beta"`
	SharesOutstanding   *Num `json:"sharesOutstanding"`
	FloatShares         *Num `json:"floatShares"`
	PriceToBook         *Num `json:"priceToBook"`
	EnterpriseToRevenue *Num `json:"enterpriseToRevenue"`
	EnterpriseToEbitda  *Num `json:"enterpriseToEbitda"`
	EnterpriseValue     *Num `json:"enterpriseValue"`
	LastDividendValue   *Num `json:"lastDividendValue"`
}

type AssetProfileModule struct {
	Sector              *string `json:"sector"`
	Industry            *string `json:"industry"`
	Country             *string `json:"country"`
	FullTimeEmployees   *int    `json:"fullTimeEmployees"`
	LongBusinessSummary *string `json:"longBusinessSummary"`
}

type IncomeStatementHistory struct {
	Statements []IncomeStatement `json:"incomeStatementHistory"`
}

type IncomeStatement struct {
	EndDate         *Num `json:"endDate"` // unix seconds
	TotalRevenue    *Num `json:"totalRevenue"`
	OperatingIncome *Num `json:"operatingIncome"`
	NetIncome       *Num `json:"netIncome"`
}

type BalanceSheetHistory struct {
	Statements []BalanceSheet `json:"balanceSheetStatements"`
}

type BalanceSheet struct {
	EndDate                *Num `json:"endDate"`
	Cash                   *Num `json:"cash"`
	TotalAssets            *Num `json:"totalAssets"`
	TotalLiab              *Num `json:"totalLiab"`
	TotalDebt              *Num `json:"totalDebt"`
	TotalStockholderEquity *Num `json:"totalStockholderEquity"`
}

type CashflowStatementHistory struct {
	Statements []CashFlowStatement `json:"cashflowStatements"`
}

type CashFlowStatement struct {
	EndDate                         *Num `json:"endDate"`
	TotalCashFromOperatingActivities *Num `json:"totalCashFromOperatingActivities"`
	CapitalExpenditures             *Num `json:"capitalExpenditures"`
	DividendsPaid                   *Num `json:"dividendsPaid"`
	RepurchaseOfStock               *Num `json:"repurchaseOfStock"`
}

type RecommendationTrendModule struct {
	Trend []RecommendationTrend `json:"trend"`
}

type RecommendationTrend struct {
	Period     string `json:"period"`
	StrongBuy  int    `json:"strongBuy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strongSell"`
}

type MajorHoldersBreakdownModule struct {
	InsidersPercentHeld     *Num `json:"insidersPercentHeld"`
	InstitutionsPercentHeld *Num `json:"institutionsPercentHeld"`
}

type InsiderTransactionsModule struct {
	Transactions []InsiderTransaction `json:"transactions"`
}

type InsiderTransaction struct {
	FilerName       *string `json:"filerName"`
	TransactionText *string `json:"transactionText"`
	Value           *Num    `json:"value"`
	StartDate       *Num    `json:"startDate"` // unix seconds
}

// ChartResult is the condensed output of Yahoo's chart endpoint: adjusted
// closes oldest-first plus the summed dividend events over the window.
type ChartResult struct {
	Closes         []*float64
	TotalDividends *float64
}

// Holder is one row of the institutional-holders table.
type Holder struct {
	Name        string
	PercentHeld *float64
}

// CompanyProfile is the Alpha Vantage OVERVIEW payload. Alpha Vantage
// serializes every number as a string ("None" when absent); use ParseNum
// to unwrap.
type CompanyProfile struct {
	Symbol           string `json:"Symbol"`
	Name             string `json:"Name"`
	Exchange         string `json:"Exchange"`
	Sector           string `json:"Sector"`
	Industry         string `json:"Industry"`
	Country          string `json:"Country"`
	Description      string `json:"Description"`
	MarketCap        string `json:"MarketCapitalization"`
	PERatio          string `json:"PERatio"`
	FiftyTwoWeekHigh string `json:"52WeekHigh"`
	FiftyTwoWeekLow  string `json:"52WeekLow"`
	EPS              string `json:"EPS"`
	Beta             string `json:"Beta"`
	AverageVolume    string `json:"AverageVolume"`
}

// DailyBar is one session of the adjusted daily series, newest first in
// the slice the gateway returns.
type DailyBar struct {
	Date  string
	Close float64
}

// QuarterlyReport is one quarterly statement from the Alpha Vantage
// fundamentals endpoints; only the fields the engine consumes are mapped.
type QuarterlyReport struct {
	FiscalDateEnding       string `json:"fiscalDateEnding"`
	TotalRevenue           string `json:"totalRevenue"`
	NetIncome              string `json:"netIncome"`
	OperatingIncome        string `json:"operatingIncome"`
	OperatingCashflow      string `json:"operatingCashflow"`
	CapitalExpenditures    string `json:"capitalExpenditures"`
	DividendPayout         string `json:"dividendPayout"`
	ShareRepurchases       string `json:"paymentsForRepurchaseOfCommonStock"`
	CashAndEquivalents     string `json:"cashAndCashEquivalentsAtCarryingValue"`
	TotalLiabilities       string `json:"totalLiabilities"`
	TotalShareholderEquity string `json:"totalShareholderEquity"`
	TotalAssets            string `json:"totalAssets"`
}

// SearchMatch is one symbol-search suggestion.
type SearchMatch struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// ParseNum converts an Alpha Vantage string field to a number. Empty
// strings, "None" and "-" all mean absent.
func ParseNum(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
