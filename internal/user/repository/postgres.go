package repository

import (
	"context"
	"database/sql"
	"errors"

	"poseidon-capital/backend/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password, fullname, role, keycloak_id FROM users WHERE id = $1`, id)
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Fullname, &u.Role, &u.KeycloakID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// List returns all users ordered by id.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, password, fullname, role, keycloak_id FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.User
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.Fullname, &u.Role, &u.KeycloakID); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Create inserts the user and assigns its database id.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password, fullname, role, keycloak_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		u.Username, u.Password, u.Fullname, u.Role, u.KeycloakID).Scan(&u.ID)
}

// Update overwrites the user's mutable columns. Username and keycloak_id are
// immutable after creation and not touched.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password = $2, fullname = $3, role = $4 WHERE id = $1`,
		u.ID, u.Password, u.Fullname, u.Role)
	return err
}

// Delete removes the user row. Deleting a missing row is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}
