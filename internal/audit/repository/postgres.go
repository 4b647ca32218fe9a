package repository

import (
	"context"
	"database/sql"

	"poseidon-capital/backend/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	meta := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, actor, action, resource, resource_id, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Actor, a.Action, a.Resource, a.ResourceID, a.IP, meta, a.CreatedAt)
	return err
}

// ListByResource returns the newest audit logs for one resource, newest first.
func (r *PostgresRepository) ListByResource(ctx context.Context, resource, resourceID string, limit int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, actor, action, resource, resource_id, ip, metadata, created_at
		 FROM audit_logs WHERE resource = $1 AND resource_id = $2
		 ORDER BY created_at DESC LIMIT $3`,
		resource, resourceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		a := &domain.AuditLog{}
		var meta sql.NullString
		if err := rows.Scan(&a.ID, &a.Actor, &a.Action, &a.Resource, &a.ResourceID, &a.IP, &meta, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Metadata = meta.String
		out = append(out, a)
	}
	return out, rows.Err()
}
