package repository

import (
	"context"

	"poseidon-capital/backend/internal/rating/domain"
)

// Repository persists ratings. GetByID returns (nil, nil) when no row exists
// for the id.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Rating, error)
	List(ctx context.Context) ([]*domain.Rating, error)
	Create(ctx context.Context, rt *domain.Rating) error
	Update(ctx context.Context, rt *domain.Rating) error
	Delete(ctx context.Context, id int64) error
}
