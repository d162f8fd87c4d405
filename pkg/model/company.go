// Package model defines the persisted schema: a Company identified by its
// ticker symbol owning at most one report, itself composed of independently
// generated sections.
package model

import "time"

// Role is the access level attached to a user session.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Company is the root of the report tree. It is upserted on the first
// dashboard or report request for a symbol and never deleted.
type Company struct {
	ID          uint    `gorm:"primaryKey"`
	Symbol      string  `gorm:"uniqueIndex;size:32;not null"`
	CompanyName *string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	ExecutiveSummary           *ExecutiveSummary           `gorm:"constraint:OnDelete:CASCADE"`
	Overview                   *OverviewAndStockMetrics    `gorm:"constraint:OnDelete:CASCADE"`
	ShareholderStructure       *ShareholderStructure       `gorm:"constraint:OnDelete:CASCADE"`
	AnalystRecommendation      *AnalystRecommendation      `gorm:"constraint:OnDelete:CASCADE"`
	EquityValuation            *EquityValuation            `gorm:"constraint:OnDelete:CASCADE"`
	FinancialStatementAnalysis *FinancialStatementAnalysis `gorm:"constraint:OnDelete:CASCADE"`

	Votes []Vote `gorm:"constraint:OnDelete:CASCADE"`
}

// User is the minimal identity the core needs; session issuance lives
// outside this service.
type User struct {
	ID        string `gorm:"primaryKey;size:36"`
	Email     string `gorm:"uniqueIndex;size:255"`
	Role      Role   `gorm:"size:16;not null;default:USER"`
	CreatedAt time.Time
}

// Vote is one directional opinion on a company. A user may hold at most
// one vote per company; changing your mind updates the row in place.
type Vote struct {
	ID        uint   `gorm:"primaryKey"`
	CompanyID uint   `gorm:"not null;uniqueIndex:idx_votes_company_user"`
	UserID    string `gorm:"size:36;not null;uniqueIndex:idx_votes_company_user"`
	Positive  bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VoteCounts is the aggregated tally for a company. Counts are always
// derived from the vote rows, never stored as running totals.
type VoteCounts struct {
	UpVotes   int64 `json:"upVotes"`
	DownVotes int64 `json:"downVotes"`
}
