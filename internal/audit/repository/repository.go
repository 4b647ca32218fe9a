package repository

import (
	"context"

	"poseidon-capital/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	ListByResource(ctx context.Context, resource, resourceID string, limit int32) ([]*domain.AuditLog, error)
}
