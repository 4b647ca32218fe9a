package repository

import (
	"context"

	"poseidon-capital/backend/internal/bidlist/domain"
)

// Repository persists bid list rows. GetByID returns (nil, nil) when no row
// exists for the id.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.BidList, error)
	List(ctx context.Context) ([]*domain.BidList, error)
	Create(ctx context.Context, b *domain.BidList) error
	Update(ctx context.Context, b *domain.BidList) error
	Delete(ctx context.Context, id int64) error
}
