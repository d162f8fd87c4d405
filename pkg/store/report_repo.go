package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"equity_research/pkg/model"
)

// ReportRepo persists companies and report sections.
type ReportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// UpsertCompany registers a symbol, returning the existing row when it is
// already known. The unique symbol index makes concurrent registration
// safe without locking.
func (r *ReportRepo) UpsertCompany(ctx context.Context, symbol string, name *string) (*model.Company, error) {
	company := &model.Company{Symbol: symbol, CompanyName: name}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			DoNothing: true,
		}).
		Create(company).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert company %s: %w", symbol, err)
	}

	// On conflict the insert returns no ID; read the winning row back.
	var out model.Company
	if err := r.db.WithContext(ctx).First(&out, "symbol = ?", symbol).Error; err != nil {
		return nil, fmt.Errorf("failed to load company %s: %w", symbol, err)
	}
	return &out, nil
}

// GetCompany looks up a company by symbol without its report tree.
func (r *ReportRepo) GetCompany(ctx context.Context, symbol string) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).First(&company, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load company %s: %w", symbol, err)
	}
	return &company, nil
}

// GetCompanyReport loads the full report tree for a symbol. A symbol that
// was never registered returns nil without error.
func (r *ReportRepo) GetCompanyReport(ctx context.Context, symbol string) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).
		Preload("ExecutiveSummary").
		Preload("Overview.StockMetrics").
		Preload("ShareholderStructure.MajorShareholders").
		Preload("AnalystRecommendation.ConsensusRows").
		Preload("AnalystRecommendation.ConsensusDetails").
		Preload("EquityValuation.Assumptions").
		Preload("EquityValuation.ProjectedYears.Projections").
		Preload("EquityValuation.DcfBuildup").
		Preload("EquityValuation.SensitivityRow.Values").
		Preload("FinancialStatementAnalysis.IncomeStatementRows").
		Preload("FinancialStatementAnalysis.BalanceSheetRows").
		Preload("FinancialStatementAnalysis.CashFlowRows").
		Preload("FinancialStatementAnalysis.RatioMetrics.Values").
		First(&company, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report for %s: %w", symbol, err)
	}
	return &company, nil
}

// createOnce inserts a section and its children. A duplicate-key error
// means a concurrent build already persisted this section for the company;
// the first write wins and the loser's result is discarded.
func (r *ReportRepo) createOnce(ctx context.Context, section any) error {
	err := r.db.WithContext(ctx).Create(section).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (r *ReportRepo) SaveExecutiveSummary(ctx context.Context, s *model.ExecutiveSummary) error {
	return r.createOnce(ctx, s)
}

func (r *ReportRepo) SaveOverview(ctx context.Context, s *model.OverviewAndStockMetrics) error {
	return r.createOnce(ctx, s)
}

func (r *ReportRepo) SaveShareholderStructure(ctx context.Context, s *model.ShareholderStructure) error {
	return r.createOnce(ctx, s)
}

func (r *ReportRepo) SaveAnalystRecommendation(ctx context.Context, s *model.AnalystRecommendation) error {
	return r.createOnce(ctx, s)
}

func (r *ReportRepo) SaveEquityValuation(ctx context.Context, s *model.EquityValuation) error {
	return r.createOnce(ctx, s)
}

func (r *ReportRepo) SaveFinancialStatementAnalysis(ctx context.Context, s *model.FinancialStatementAnalysis) error {
	return r.createOnce(ctx, s)
}
