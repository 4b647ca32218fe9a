package repository

import (
	"context"
	"database/sql"
	"errors"

	"poseidon-capital/backend/internal/curvepoint/domain"
	"poseidon-capital/backend/internal/db"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.CurvePoint, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, curve_id, as_of_date, term, value, creation_date FROM curve_point WHERE id = $1`, id)
	p, err := scanCurvePoint(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*domain.CurvePoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, curve_id, as_of_date, term, value, creation_date FROM curve_point ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.CurvePoint
	for rows.Next() {
		p, err := scanCurvePoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, p *domain.CurvePoint) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO curve_point (curve_id, as_of_date, term, value, creation_date)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		db.NullInt32(p.CurveID), db.NullTime(p.AsOfDate), db.NullFloat(p.Term),
		db.NullFloat(p.Value), db.NullTime(p.CreationDate)).Scan(&p.ID)
}

func (r *PostgresRepository) Update(ctx context.Context, p *domain.CurvePoint) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE curve_point SET curve_id = $2, term = $3, value = $4 WHERE id = $1`,
		p.ID, db.NullInt32(p.CurveID), db.NullFloat(p.Term), db.NullFloat(p.Value))
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM curve_point WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCurvePoint(row rowScanner) (*domain.CurvePoint, error) {
	p := &domain.CurvePoint{}
	var (
		curveID             sql.NullInt32
		term, value         sql.NullFloat64
		asOfDate, createdAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &curveID, &asOfDate, &term, &value, &createdAt); err != nil {
		return nil, err
	}
	p.CurveID = db.Int32Ptr(curveID)
	p.AsOfDate = db.TimePtr(asOfDate)
	p.Term = db.FloatPtr(term)
	p.Value = db.FloatPtr(value)
	p.CreationDate = db.TimePtr(createdAt)
	return p, nil
}
