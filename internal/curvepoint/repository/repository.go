package repository

import (
	"context"

	"poseidon-capital/backend/internal/curvepoint/domain"
)

// Repository persists curve points. GetByID returns (nil, nil) when no row
// exists for the id.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.CurvePoint, error)
	List(ctx context.Context) ([]*domain.CurvePoint, error)
	Create(ctx context.Context, p *domain.CurvePoint) error
	Update(ctx context.Context, p *domain.CurvePoint) error
	Delete(ctx context.Context, id int64) error
}
