package prompt

// Section template IDs.
const (
	ExecutiveSummaryID    = "report.executive_summary"
	OverviewID            = "report.overview"
	ShareholderID         = "report.shareholder_structure"
	AnalystID             = "report.analyst_recommendation"
	EquityValuationID     = "report.equity_valuation"
	FinancialStatementsID = "report.financial_statements"
)

// analystSystemPrompt is the shared persona for every section.
const analystSystemPrompt = `You are a senior equity research analyst at an institutional investment firm.
You write concise, factual, professional research commentary grounded strictly in the data provided.
Never invent numbers: every figure you cite must appear in the supplied facts.
When a fact is missing or null, acknowledge the gap instead of estimating.
Respond with a single JSON object and nothing else. No markdown, no commentary outside the JSON.`

func registerBuiltins(r *Registry) {
	for _, t := range builtinTemplates {
		r.Register(t)
	}
}

var builtinTemplates = []*Template{
	{
		ID:           ExecutiveSummaryID,
		Name:         "Executive Summary",
		SystemPrompt: analystSystemPrompt,
		Instructions: `Write the executive summary of an equity research report.
Return a JSON object with exactly these keys:
{
  "summary": "3-5 sentence overview of the company and the investment case",
  "positives": "2-4 sentence paragraph on the strongest points of the thesis",
  "risks": "2-4 sentence paragraph on the key risks"
}`,
	},
	{
		ID:           OverviewID,
		Name:         "Overview and Stock Metrics",
		SystemPrompt: analystSystemPrompt,
		Instructions: `Write the company overview section.
Return a JSON object with exactly these keys:
{
  "fiftyTwoWeekPerformance": "2-4 sentence commentary on the stock's trailing-year performance and trading range",
  "stockMetrics": [ { "name": "...", "value": "...", "note": "one short sentence of context" } ]
}
"stockMetrics" must contain exactly 8 entries covering: Market Cap, P/E (TTM), Forward P/E, Price/Book, Beta, Dividend Yield, 52-Week Range, Average Volume.
Use the values from the facts verbatim; render missing values as "—".`,
	},
	{
		ID:           ShareholderID,
		Name:         "Shareholder Structure",
		SystemPrompt: analystSystemPrompt,
		Instructions: `Write the shareholder structure section.
Return a JSON object with exactly these keys:
{
  "totalShares": "shares outstanding, formatted (e.g. \"15.2B\")",
  "shareCapitalNotes": "1-3 sentence note on the share capital and float",
  "keyInsiderObservations": [ "1 to 6 short observations about insider activity" ],
  "majorShareholders": [ { "shareholderType": "...", "ownership": "...", "notes": "..." } ]
}
"majorShareholders" must contain exactly 3 entries with shareholderType values "Insiders", "Institutions" and "Retail", in that order.
Base the insider observations on the insider signal and recent filings in the facts.`,
	},
	{
		ID:           AnalystID,
		Name:         "Analyst Recommendation",
		SystemPrompt: analystSystemPrompt,
		Instructions: `Write the analyst consensus section.
Return a JSON object with exactly these keys:
{
  "recentAnalystViews": [ "1 to 6 short statements summarizing the sell-side view" ],
  "consensusRows": [ { "rating": "...", "count": "...", "percentageOfTotal": "...", "trend": "..." } ],
  "consensusDetails": [ { "name": "...", "value": "..." } ]
}
"consensusRows" must contain exactly 4 entries with rating values "Strong Buy", "Buy", "Hold", "Sell" in that order; "trend" must be one of "UP", "DOWN", "FLAT".
"consensusDetails" must contain exactly 5 entries with name values "Consensus Rating", "Price Target (Mean)", "Price Target (High)", "Price Target (Low)", "Analyst Count" in that order.
Counts and targets must come from the facts; render missing values as "—".`,
	},
	{
		ID:           EquityValuationID,
		Name:         "Equity Valuation",
		SystemPrompt: analystSystemPrompt,
		Instructions: `Write the valuation narrative for a discounted cash flow model whose numeric results are supplied in the facts.
Return a JSON object with exactly these keys:
{
  "keyTakeaway": "2-4 sentence takeaway comparing the DCF fair value to the market price",
  "assumptions": [ { "modelName": "...", "assumption": "one sentence stating the assumption and its value" } ]
}
"assumptions" must contain exactly 4 entries with modelName values "WACC", "Terminal Growth", "Revenue Growth", "Forecast Horizon", in that order, each quoting the corresponding value from the facts.`,
	},
	{
		ID:           FinancialStatementsID,
		Name:         "Financial Statement Analysis",
		SystemPrompt: analystSystemPrompt,
		Instructions: `Write the financial statement analysis commentary. The statement tables themselves are supplied in the facts and rendered separately; your job is the interpretation.
Return a JSON object with exactly these keys:
{
  "keyObservations": [ "1 to 6 observations on revenue and earnings trends" ],
  "capitalPositionAnalysis": [ "1 to 6 observations on the balance sheet and leverage" ],
  "fcfQualityAnalysis": [ "1 to 6 observations on cash flow quality and capital returns" ],
  "valuationObservations": [ "1 to 6 observations linking the ratios to valuation" ]
}
Each observation is one sentence citing figures from the facts.`,
	},
}
