package repository

import (
	"context"

	"poseidon-capital/backend/internal/trade/domain"
)

// Repository persists trades. GetByID returns (nil, nil) when no row exists
// for the id.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Trade, error)
	List(ctx context.Context) ([]*domain.Trade, error)
	Create(ctx context.Context, t *domain.Trade) error
	Update(ctx context.Context, t *domain.Trade) error
	Delete(ctx context.Context, id int64) error
}
