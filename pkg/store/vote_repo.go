package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"equity_research/pkg/model"
)

// VoteRepo persists user sentiment votes. One row per (company, user);
// re-voting flips the row in place via the composite unique index.
type VoteRepo struct {
	db *gorm.DB
}

func NewVoteRepo(db *gorm.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

// CastVote records or updates a user's vote on a company.
func (r *VoteRepo) CastVote(ctx context.Context, companyID uint, userID string, positive bool) error {
	vote := &model.Vote{CompanyID: companyID, UserID: userID, Positive: positive}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"positive", "updated_at"}),
		}).
		Create(vote).Error
	if err != nil {
		return fmt.Errorf("failed to cast vote: %w", err)
	}
	return nil
}

// CountVotes tallies the votes for a company from the rows themselves.
func (r *VoteRepo) CountVotes(ctx context.Context, companyID uint) (*model.VoteCounts, error) {
	var counts model.VoteCounts
	err := r.db.WithContext(ctx).
		Model(&model.Vote{}).
		Where("company_id = ? AND positive", companyID).
		Count(&counts.UpVotes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	err = r.db.WithContext(ctx).
		Model(&model.Vote{}).
		Where("company_id = ? AND NOT positive", companyID).
		Count(&counts.DownVotes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	return &counts, nil
}
