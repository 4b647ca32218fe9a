package repository

import (
	"context"
	"database/sql"
	"errors"

	"poseidon-capital/backend/internal/db"
	"poseidon-capital/backend/internal/trade/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Trade, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, account, type, buy_quantity, trade_date, creation_date, revision_date
		 FROM trade WHERE id = $1`, id)
	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Trade, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account, type, buy_quantity, trade_date, creation_date, revision_date
		 FROM trade ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, t *domain.Trade) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO trade (account, type, buy_quantity, trade_date, creation_date, revision_date)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		t.Account, t.Type, db.NullFloat(t.BuyQuantity), db.NullTime(t.TradeDate),
		db.NullTime(t.CreationDate), db.NullTime(t.RevisionDate)).Scan(&t.ID)
}

// Update overwrites the mutable columns only.
func (r *PostgresRepository) Update(ctx context.Context, t *domain.Trade) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE trade SET account = $2, type = $3, buy_quantity = $4, revision_date = $5 WHERE id = $1`,
		t.ID, t.Account, t.Type, db.NullFloat(t.BuyQuantity), db.NullTime(t.RevisionDate))
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM trade WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var (
		buyQty                          sql.NullFloat64
		tradeDate, createdAt, revisedAt sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Account, &t.Type, &buyQty, &tradeDate, &createdAt, &revisedAt); err != nil {
		return nil, err
	}
	t.BuyQuantity = db.FloatPtr(buyQty)
	t.TradeDate = db.TimePtr(tradeDate)
	t.CreationDate = db.TimePtr(createdAt)
	t.RevisionDate = db.TimePtr(revisedAt)
	return t, nil
}
