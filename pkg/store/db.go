// Package store is the relational persistence layer. Concurrency control
// is delegated to the database: every section save is an upsert against
// the section's unique company key, so two builds racing on the same
// symbol converge on one stored row instead of erroring.
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"equity_research/pkg/model"
)

// Open connects to Postgres, configures the pool and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Company{},
		&model.Vote{},
		&model.ExecutiveSummary{},
		&model.OverviewAndStockMetrics{},
		&model.StockMetric{},
		&model.ShareholderStructure{},
		&model.MajorShareholder{},
		&model.AnalystRecommendation{},
		&model.ConsensusRow{},
		&model.ConsensusDetail{},
		&model.EquityValuation{},
		&model.ValuationAssumption{},
		&model.ProjectedFinancialYear{},
		&model.Projection{},
		&model.DcfValuationBuildup{},
		&model.SensitivityRow{},
		&model.SensitivityValue{},
		&model.FinancialStatementAnalysis{},
		&model.IncomeStatementRow{},
		&model.BalanceSheetRow{},
		&model.CashFlowRow{},
		&model.RatioMetric{},
		&model.RatioValue{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
