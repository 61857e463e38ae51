package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
)

// UserRepository resolves reviewer accounts. User administration itself is
// handled by the identity service.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// ListReviewers returns all active users holding any of the given roles.
func (r *UserRepository) ListReviewers(ctx context.Context, roles ...models.UserRole) ([]models.Reviewer, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT id, email, full_name, role FROM users WHERE active = TRUE AND role IN (?) ORDER BY full_name`,
		roles)
	if err != nil {
		return nil, fmt.Errorf("build reviewers query: %w", err)
	}
	var reviewers []models.Reviewer
	if err := r.db.SelectContext(ctx, &reviewers, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list reviewers: %w", err)
	}
	return reviewers, nil
}
