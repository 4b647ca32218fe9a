// seed inserts development sample data for local testing.
// Idempotent: skips all inserts if the bid_list table already has rows.
package main

import (
	"context"
	"log"
	"time"

	"poseidon-capital/backend/internal/config"
	"poseidon-capital/backend/internal/db"

	bidlistdomain "poseidon-capital/backend/internal/bidlist/domain"
	bidlistrepo "poseidon-capital/backend/internal/bidlist/repository"
	curvepointdomain "poseidon-capital/backend/internal/curvepoint/domain"
	curvepointrepo "poseidon-capital/backend/internal/curvepoint/repository"
	ratingdomain "poseidon-capital/backend/internal/rating/domain"
	ratingrepo "poseidon-capital/backend/internal/rating/repository"
	rulenamedomain "poseidon-capital/backend/internal/rulename/domain"
	rulenamerepo "poseidon-capital/backend/internal/rulename/repository"
	tradedomain "poseidon-capital/backend/internal/trade/domain"
	traderepo "poseidon-capital/backend/internal/trade/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()

	var existing int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM bid_list`).Scan(&existing); err != nil {
		log.Fatalf("count bid_list: %v", err)
	}
	if existing > 0 {
		log.Println("sample data already present; nothing to do")
		return
	}

	now := time.Now().UTC()
	f := func(v float64) *float64 { return &v }
	i := func(v int32) *int32 { return &v }

	bidLists := bidlistrepo.NewPostgresRepository(conn)
	for _, b := range []*bidlistdomain.BidList{
		{Account: "acct-equities", Type: "equity", BidQuantity: f(100), Bid: f(12.5), Ask: f(12.75), Status: "LIVE", Trader: "dmercier", CreationDate: &now},
		{Account: "acct-bonds", Type: "bond", BidQuantity: f(250), Benchmark: "EURIBOR-3M", CreationDate: &now},
	} {
		if err := bidLists.Create(ctx, b); err != nil {
			log.Fatalf("seed bid_list: %v", err)
		}
	}

	curvePoints := curvepointrepo.NewPostgresRepository(conn)
	for _, p := range []*curvepointdomain.CurvePoint{
		{CurveID: i(10), Term: f(1), Value: f(2.15), AsOfDate: &now, CreationDate: &now},
		{CurveID: i(10), Term: f(5), Value: f(2.85), AsOfDate: &now, CreationDate: &now},
		{CurveID: i(10), Term: f(10), Value: f(3.1), AsOfDate: &now, CreationDate: &now},
	} {
		if err := curvePoints.Create(ctx, p); err != nil {
			log.Fatalf("seed curve_point: %v", err)
		}
	}

	ratings := ratingrepo.NewPostgresRepository(conn)
	for _, rt := range []*ratingdomain.Rating{
		{MoodysRating: "Aaa", SandPRating: "AAA", FitchRating: "AAA", OrderNumber: i(1)},
		{MoodysRating: "Ba1", SandPRating: "BB+", FitchRating: "BB+", OrderNumber: i(11)},
	} {
		if err := ratings.Create(ctx, rt); err != nil {
			log.Fatalf("seed rating: %v", err)
		}
	}

	ruleNames := rulenamerepo.NewPostgresRepository(conn)
	rn := &rulenamedomain.RuleName{
		Name:        "stale-quote",
		Description: "flags quotes older than one day",
		Template:    "quote_age > :max_age",
		SQLStr:      "SELECT * FROM bid_list WHERE bid_list_date < now() - interval '1 day'",
	}
	if err := ruleNames.Create(ctx, rn); err != nil {
		log.Fatalf("seed rule_name: %v", err)
	}

	trades := traderepo.NewPostgresRepository(conn)
	for _, t := range []*tradedomain.Trade{
		{Account: "acct-equities", Type: "equity", BuyQuantity: f(50), TradeDate: &now, CreationDate: &now},
		{Account: "acct-bonds", Type: "bond", BuyQuantity: f(10), TradeDate: &now, CreationDate: &now},
	} {
		if err := trades.Create(ctx, t); err != nil {
			log.Fatalf("seed trade: %v", err)
		}
	}

	log.Println("sample data inserted")
}
