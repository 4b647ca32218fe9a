package repository

import (
	"context"
	"database/sql"
	"errors"

	"poseidon-capital/backend/internal/rulename/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.RuleName, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, json, template, sql_str, sql_part FROM rule_name WHERE id = $1`, id)
	rn := &domain.RuleName{}
	err := row.Scan(&rn.ID, &rn.Name, &rn.Description, &rn.JSON, &rn.Template, &rn.SQLStr, &rn.SQLPart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rn, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*domain.RuleName, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, json, template, sql_str, sql_part FROM rule_name ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.RuleName
	for rows.Next() {
		rn := &domain.RuleName{}
		if err := rows.Scan(&rn.ID, &rn.Name, &rn.Description, &rn.JSON, &rn.Template, &rn.SQLStr, &rn.SQLPart); err != nil {
			return nil, err
		}
		out = append(out, rn)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, rn *domain.RuleName) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO rule_name (name, description, json, template, sql_str, sql_part)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		rn.Name, rn.Description, rn.JSON, rn.Template, rn.SQLStr, rn.SQLPart).Scan(&rn.ID)
}

func (r *PostgresRepository) Update(ctx context.Context, rn *domain.RuleName) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE rule_name SET name = $2, description = $3, json = $4, template = $5, sql_str = $6, sql_part = $7
		 WHERE id = $1`,
		rn.ID, rn.Name, rn.Description, rn.JSON, rn.Template, rn.SQLStr, rn.SQLPart)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rule_name WHERE id = $1`, id)
	return err
}
