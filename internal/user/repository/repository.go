package repository

import (
	"context"

	"poseidon-capital/backend/internal/user/domain"
)

// Repository defines persistence for local user records.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Create inserts the user and assigns its ID.
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error
}
