package repository

import (
	"context"

	"poseidon-capital/backend/internal/rulename/domain"
)

// Repository persists rule names. GetByID returns (nil, nil) when no row
// exists for the id.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.RuleName, error)
	List(ctx context.Context) ([]*domain.RuleName, error)
	Create(ctx context.Context, rn *domain.RuleName) error
	Update(ctx context.Context, rn *domain.RuleName) error
	Delete(ctx context.Context, id int64) error
}
