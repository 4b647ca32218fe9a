package repository

import (
	"context"
	"database/sql"
	"errors"

	"poseidon-capital/backend/internal/bidlist/domain"
	"poseidon-capital/backend/internal/db"
)

const bidListColumns = `bid_list_id, account, type, bid_quantity, ask_quantity, bid, ask,
	benchmark, bid_list_date, commentary, security, status, trader, book,
	creation_name, creation_date, revision_name, revision_date,
	deal_name, deal_type, source_list_id, side`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.BidList, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bidListColumns+` FROM bid_list WHERE bid_list_id = $1`, id)
	b, err := scanBidList(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*domain.BidList, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bidListColumns+` FROM bid_list ORDER BY bid_list_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.BidList
	for rows.Next() {
		b, err := scanBidList(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, b *domain.BidList) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO bid_list (account, type, bid_quantity, ask_quantity, bid, ask,
			benchmark, bid_list_date, commentary, security, status, trader, book,
			creation_name, creation_date, revision_name, revision_date,
			deal_name, deal_type, source_list_id, side)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21)
		 RETURNING bid_list_id`,
		b.Account, b.Type, db.NullFloat(b.BidQuantity), db.NullFloat(b.AskQuantity),
		db.NullFloat(b.Bid), db.NullFloat(b.Ask), b.Benchmark, db.NullTime(b.BidListDate),
		b.Commentary, b.Security, b.Status, b.Trader, b.Book,
		b.CreationName, db.NullTime(b.CreationDate), b.RevisionName, db.NullTime(b.RevisionDate),
		b.DealName, b.DealType, b.SourceListID, b.Side).Scan(&b.ID)
}

// Update overwrites the mutable columns only.
func (r *PostgresRepository) Update(ctx context.Context, b *domain.BidList) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE bid_list SET account = $2, type = $3, bid_quantity = $4, revision_date = $5
		 WHERE bid_list_id = $1`,
		b.ID, b.Account, b.Type, db.NullFloat(b.BidQuantity), db.NullTime(b.RevisionDate))
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bid_list WHERE bid_list_id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBidList(row rowScanner) (*domain.BidList, error) {
	b := &domain.BidList{}
	var (
		bidQty, askQty, bid, ask                sql.NullFloat64
		bidListDate, creationDate, revisionDate sql.NullTime
	)
	err := row.Scan(&b.ID, &b.Account, &b.Type, &bidQty, &askQty, &bid, &ask,
		&b.Benchmark, &bidListDate, &b.Commentary, &b.Security, &b.Status,
		&b.Trader, &b.Book, &b.CreationName, &creationDate,
		&b.RevisionName, &revisionDate, &b.DealName, &b.DealType,
		&b.SourceListID, &b.Side)
	if err != nil {
		return nil, err
	}
	b.BidQuantity = db.FloatPtr(bidQty)
	b.AskQuantity = db.FloatPtr(askQty)
	b.Bid = db.FloatPtr(bid)
	b.Ask = db.FloatPtr(ask)
	b.BidListDate = db.TimePtr(bidListDate)
	b.CreationDate = db.TimePtr(creationDate)
	b.RevisionDate = db.TimePtr(revisionDate)
	return b, nil
}
