package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"equity_research/pkg/model"
)

// UserRepo persists the minimal user identities sessions attach to.
type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// UpsertUser registers a user by email, keeping the stored role when the
// user already exists.
func (r *UserRepo) UpsertUser(ctx context.Context, user *model.User) (*model.User, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	var out model.User
	if err := r.db.WithContext(ctx).First(&out, "email = ?", user.Email).Error; err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &out, nil
}

// GetUser looks up a user by ID.
func (r *UserRepo) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}
