package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phuslu/log"

	"equity_research/pkg/llm"
	"equity_research/pkg/marketdata"
	"equity_research/pkg/model"
	"equity_research/pkg/prompt"
	"equity_research/pkg/quant"
)

// SectionState tracks a section through the build. Terminal states are
// PERSISTED, FAILED and CACHED.
type SectionState string

const (
	StateNotStarted SectionState = "NOT_STARTED"
	StateFetching   SectionState = "FETCHING"
	StateDeriving   SectionState = "DERIVING"
	StateGenerating SectionState = "GENERATING"
	StateValidating SectionState = "VALIDATING"
	StatePersisted  SectionState = "PERSISTED"
	StateFailed     SectionState = "FAILED"
	StateCached     SectionState = "CACHED"
)

// SectionOutcome is the settled result of one section build.
type SectionOutcome struct {
	Section string       `json:"section"`
	State   SectionState `json:"state"`
	Error   string       `json:"error,omitempty"`
}

// BuildResult reports every section outcome plus the report as persisted
// after the build, cached sections included.
type BuildResult struct {
	Symbol   string           `json:"symbol"`
	Outcomes []SectionOutcome `json:"outcomes"`
	Company  *model.Company   `json:"company"`
}

// Complete reports whether every section reached a stored state.
func (r *BuildResult) Complete() bool {
	for _, o := range r.Outcomes {
		if o.State != StatePersisted && o.State != StateCached {
			return false
		}
	}
	return true
}

// Store is the persistence surface the orchestrator needs. Every save is
// an upsert keyed on the company, so concurrent builds of the same symbol
// settle on a single stored section.
type Store interface {
	UpsertCompany(ctx context.Context, symbol string, name *string) (*model.Company, error)
	GetCompanyReport(ctx context.Context, symbol string) (*model.Company, error)

	SaveExecutiveSummary(ctx context.Context, s *model.ExecutiveSummary) error
	SaveOverview(ctx context.Context, s *model.OverviewAndStockMetrics) error
	SaveShareholderStructure(ctx context.Context, s *model.ShareholderStructure) error
	SaveAnalystRecommendation(ctx context.Context, s *model.AnalystRecommendation) error
	SaveEquityValuation(ctx context.Context, s *model.EquityValuation) error
	SaveFinancialStatementAnalysis(ctx context.Context, s *model.FinancialStatementAnalysis) error
}

// Orchestrator builds reports section by section: fetch the provider
// snapshots once, derive facts per section, generate the narrative under
// schema constraints, and persist. Sections run concurrently and settle
// independently.
type Orchestrator struct {
	gateway  marketdata.Gateway
	gen      *llm.Generator
	store    Store
	registry *prompt.Registry
	params   quant.ValuationParams
}

func NewOrchestrator(gateway marketdata.Gateway, gen *llm.Generator, store Store, params quant.ValuationParams) *Orchestrator {
	return &Orchestrator{
		gateway:  gateway,
		gen:      gen,
		store:    store,
		registry: prompt.Get(),
		params:   params,
	}
}

// quoteSummaryModules is the full module set the sections consume, fetched
// in one call.
var quoteSummaryModules = []string{
	"price", "summaryDetail", "financialData", "defaultKeyStatistics",
	"assetProfile", "incomeStatementHistory", "balanceSheetHistory",
	"cashflowStatementHistory", "recommendationTrend",
	"majorHoldersBreakdown", "insiderTransactions",
}

// snapshot is the shared fetch result. Every field is best-effort: a
// failed fetch leaves it nil and the sections degrade to missing data.
type snapshot struct {
	profile  *marketdata.CompanyProfile
	quote    *marketdata.QuoteSummary
	bars     []marketdata.DailyBar
	holders  []marketdata.Holder
	income   []marketdata.QuarterlyReport
	balance  []marketdata.QuarterlyReport
	cashflow []marketdata.QuarterlyReport
}

// Build generates every missing section for symbol. Already persisted
// sections are never regenerated; their outcome is CACHED and no provider
// or model call is made for them.
func (o *Orchestrator) Build(ctx context.Context, symbol string) (*BuildResult, error) {
	company, err := o.store.UpsertCompany(ctx, symbol, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register company %s: %w", symbol, err)
	}

	existing, err := o.store.GetCompanyReport(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load report for %s: %w", symbol, err)
	}

	result := &BuildResult{Symbol: symbol}
	var pending []string
	for _, name := range AllSections() {
		if sectionPresent(existing, name) {
			result.Outcomes = append(result.Outcomes, SectionOutcome{Section: name, State: StateCached})
		} else {
			pending = append(pending, name)
		}
	}
	if len(pending) == 0 {
		result.Company = existing
		return result, nil
	}

	snap := o.fetchSnapshot(ctx, symbol, pending)

	// Valuation facts are shared: the valuation section persists them and
	// the executive summary cites the fair value.
	valuation := quant.DeriveValuation(snap.quote, time.Now().Year(), o.params)

	outcomes := make([]SectionOutcome, len(pending))
	var wg sync.WaitGroup
	for i, name := range pending {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			outcomes[i] = o.buildSection(ctx, company, name, snap, &valuation)
		}(i, name)
	}
	wg.Wait()
	result.Outcomes = append(result.Outcomes, outcomes...)

	final, err := o.store.GetCompanyReport(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to reload report for %s: %w", symbol, err)
	}
	result.Company = final
	return result, nil
}

// fetchSnapshot runs the provider calls the pending sections need, in
// parallel, logging failures instead of propagating them.
func (o *Orchestrator) fetchSnapshot(ctx context.Context, symbol string, pending []string) *snapshot {
	need := make(map[string]bool, len(pending))
	for _, name := range pending {
		need[name] = true
	}

	snap := &snapshot{}
	var wg sync.WaitGroup
	fetch := func(what string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				log.Warn().Str("symbol", symbol).Str("fetch", what).Err(err).Msg("upstream data unavailable")
			}
		}()
	}

	// Every section grounds on the quote summary.
	fetch("quoteSummary", func() error {
		qs, err := o.gateway.QuoteSummary(ctx, symbol, quoteSummaryModules)
		snap.quote = qs
		return err
	})
	if need[SectionOverview] {
		fetch("profile", func() error {
			p, err := o.gateway.Profile(ctx, symbol)
			snap.profile = p
			return err
		})
		fetch("dailySeries", func() error {
			bars, err := o.gateway.DailySeries(ctx, symbol)
			snap.bars = bars
			return err
		})
	}
	if need[SectionShareholder] {
		fetch("majorHolders", func() error {
			holders, err := o.gateway.MajorHolders(ctx, symbol)
			snap.holders = holders
			return err
		})
	}
	if need[SectionFinancialStatements] {
		fetch("income", func() error {
			reports, err := o.gateway.QuarterlyIncome(ctx, symbol)
			snap.income = reports
			return err
		})
		fetch("balance", func() error {
			reports, err := o.gateway.QuarterlyBalance(ctx, symbol)
			snap.balance = reports
			return err
		})
		fetch("cashflow", func() error {
			reports, err := o.gateway.QuarterlyCashFlow(ctx, symbol)
			snap.cashflow = reports
			return err
		})
	}
	wg.Wait()
	return snap
}

// buildSection walks one section through derive, generate and persist.
func (o *Orchestrator) buildSection(ctx context.Context, company *model.Company, name string, snap *snapshot, valuation *quant.ValuationFacts) SectionOutcome {
	outcome := SectionOutcome{Section: name, State: StateDeriving}
	started := time.Now()

	var err error
	switch name {
	case SectionExecutiveSummary:
		facts := quant.DeriveExecutive(company.Symbol, snap.quote, valuation)
		payload := &ExecutiveSummaryPayload{}
		if err = o.generate(ctx, company.Symbol, prompt.ExecutiveSummaryID, facts, payload, &outcome); err == nil {
			err = o.store.SaveExecutiveSummary(ctx, assembleExecutive(company.ID, payload, facts))
		}
	case SectionOverview:
		facts := quant.DeriveOverview(snap.profile, snap.quote, snap.bars)
		payload := &OverviewPayload{}
		if err = o.generate(ctx, company.Symbol, prompt.OverviewID, facts, payload, &outcome); err == nil {
			err = o.store.SaveOverview(ctx, assembleOverview(company.ID, payload))
		}
	case SectionShareholder:
		facts := quant.DeriveShareholder(snap.quote, snap.holders)
		payload := &ShareholderPayload{}
		if err = o.generate(ctx, company.Symbol, prompt.ShareholderID, facts, payload, &outcome); err == nil {
			err = o.store.SaveShareholderStructure(ctx, assembleShareholder(company.ID, payload))
		}
	case SectionAnalyst:
		facts := quant.DeriveAnalyst(snap.quote)
		payload := &AnalystPayload{}
		if err = o.generate(ctx, company.Symbol, prompt.AnalystID, facts, payload, &outcome); err == nil {
			err = o.store.SaveAnalystRecommendation(ctx, assembleAnalyst(company.ID, payload))
		}
	case SectionEquityValuation:
		payload := &ValuationPayload{}
		if err = o.generate(ctx, company.Symbol, prompt.EquityValuationID, valuation, payload, &outcome); err == nil {
			err = o.store.SaveEquityValuation(ctx, assembleValuation(company.ID, payload, *valuation))
		}
	case SectionFinancialStatements:
		var shares *float64
		if snap.quote != nil && snap.quote.DefaultKeyStatistics != nil {
			shares = snap.quote.DefaultKeyStatistics.SharesOutstanding.Value()
		}
		facts := quant.DeriveStatements(snap.income, snap.balance, snap.cashflow, shares)
		payload := &StatementsPayload{}
		if err = o.generate(ctx, company.Symbol, prompt.FinancialStatementsID, facts, payload, &outcome); err == nil {
			err = o.store.SaveFinancialStatementAnalysis(ctx, assembleStatements(company.ID, payload, facts))
		}
	default:
		err = fmt.Errorf("unknown section %s", name)
	}

	if err != nil {
		outcome.State = StateFailed
		outcome.Error = err.Error()
		log.Error().
			Str("symbol", company.Symbol).
			Str("section", name).
			Dur("duration", time.Since(started)).
			Err(err).
			Msg("section build failed")
		return outcome
	}

	outcome.State = StatePersisted
	log.Info().
		Str("symbol", company.Symbol).
		Str("section", name).
		Dur("duration", time.Since(started)).
		Msg("section persisted")
	return outcome
}

// generate runs the prompt for a section and fills the payload, updating
// the outcome state as the section advances.
func (o *Orchestrator) generate(ctx context.Context, symbol, templateID string, facts any, payload llm.Validatable, outcome *SectionOutcome) error {
	tpl, err := o.registry.Lookup(templateID)
	if err != nil {
		return err
	}
	userPrompt, err := tpl.BuildUserPrompt(symbol, facts)
	if err != nil {
		return err
	}
	outcome.State = StateGenerating
	err = o.gen.Generate(ctx, tpl.SystemPrompt, userPrompt, payload)
	outcome.State = StateValidating
	return err
}

func sectionPresent(company *model.Company, name string) bool {
	if company == nil {
		return false
	}
	switch name {
	case SectionExecutiveSummary:
		return company.ExecutiveSummary != nil
	case SectionOverview:
		return company.Overview != nil
	case SectionShareholder:
		return company.ShareholderStructure != nil
	case SectionAnalyst:
		return company.AnalystRecommendation != nil
	case SectionEquityValuation:
		return company.EquityValuation != nil
	case SectionFinancialStatements:
		return company.FinancialStatementAnalysis != nil
	}
	return false
}
