package repository

import (
	"context"
	"database/sql"
	"errors"

	"poseidon-capital/backend/internal/db"
	"poseidon-capital/backend/internal/rating/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Rating, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, moodys_rating, sandp_rating, fitch_rating, order_number FROM rating WHERE id = $1`, id)
	rt, err := scanRating(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rt, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Rating, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, moodys_rating, sandp_rating, fitch_rating, order_number FROM rating ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Rating
	for rows.Next() {
		rt, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, rt *domain.Rating) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO rating (moodys_rating, sandp_rating, fitch_rating, order_number)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		rt.MoodysRating, rt.SandPRating, rt.FitchRating, db.NullInt32(rt.OrderNumber)).Scan(&rt.ID)
}

func (r *PostgresRepository) Update(ctx context.Context, rt *domain.Rating) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE rating SET moodys_rating = $2, sandp_rating = $3, fitch_rating = $4, order_number = $5
		 WHERE id = $1`,
		rt.ID, rt.MoodysRating, rt.SandPRating, rt.FitchRating, db.NullInt32(rt.OrderNumber))
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rating WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRating(row rowScanner) (*domain.Rating, error) {
	rt := &domain.Rating{}
	var orderNumber sql.NullInt32
	if err := row.Scan(&rt.ID, &rt.MoodysRating, &rt.SandPRating, &rt.FitchRating, &orderNumber); err != nil {
		return nil, err
	}
	rt.OrderNumber = db.Int32Ptr(orderNumber)
	return rt, nil
}
