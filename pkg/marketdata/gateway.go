package marketdata

import "context"

// ProviderGateway combines the Alpha Vantage and Yahoo clients behind the
// Gateway interface the rest of the service depends on.
type ProviderGateway struct {
	av    *AlphaVantageClient
	yahoo *YahooClient
}

func NewProviderGateway(av *AlphaVantageClient, yahoo *YahooClient) *ProviderGateway {
	return &ProviderGateway{av: av, yahoo: yahoo}
}

func (g *ProviderGateway) Profile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	return g.av.Profile(ctx, symbol)
}

func (g *ProviderGateway) DailySeries(ctx context.Context, symbol string) ([]DailyBar, error) {
	return g.av.DailySeries(ctx, symbol)
}

func (g *ProviderGateway) QuarterlyIncome(ctx context.Context, symbol string) ([]QuarterlyReport, error) {
	return g.av.QuarterlyIncome(ctx, symbol)
}

func (g *ProviderGateway) QuarterlyBalance(ctx context.Context, symbol string) ([]QuarterlyReport, error) {
	return g.av.QuarterlyBalance(ctx, symbol)
}

func (g *ProviderGateway) QuarterlyCashFlow(ctx context.Context, symbol string) ([]QuarterlyReport, error) {
	return g.av.QuarterlyCashFlow(ctx, symbol)
}

func (g *ProviderGateway) Search(ctx context.Context, query string) ([]SearchMatch, error) {
	return g.av.Search(ctx, query)
}

func (g *ProviderGateway) QuoteSummary(ctx context.Context, symbol string, modules []string) (*QuoteSummary, error) {
	return g.yahoo.QuoteSummary(ctx, symbol, modules)
}

func (g *ProviderGateway) Chart(ctx context.Context, symbol string, years int, withDividends bool) (*ChartResult, error) {
	return g.yahoo.Chart(ctx, symbol, years, withDividends)
}

func (g *ProviderGateway) MajorHolders(ctx context.Context, symbol string) ([]Holder, error) {
	return g.yahoo.MajorHolders(ctx, symbol)
}

var _ Gateway = (*ProviderGateway)(nil)
