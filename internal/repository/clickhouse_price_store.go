package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"StockSense/internal/domain/models"
	domrepo "StockSense/internal/domain/repository"
	pkgch "StockSense/pkg/clickhouse"
	applogger "StockSense/pkg/logger"
	"StockSense/pkg/util"
)

// PriceSchema creates the daily close archive. Re-ingesting a day keeps the
// latest row per (ticker, date) after merges; reads use argMax regardless.
var PriceSchema = []string{
	`CREATE TABLE IF NOT EXISTS daily_closes (
		date        Date,
		ticker      LowCardinality(String),
		close       Float64,
		ingested_at DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree(ingested_at)
	ORDER BY (ticker, date)`,
}

const insertCloses = "INSERT INTO daily_closes (date, ticker, close)"

// CHPriceStore archives daily closes in ClickHouse and serves them back as
// a price feed.
type CHPriceStore struct {
	ch  *pkgch.Client
	db  *sql.DB
	l   *applogger.Logger
	now func() time.Time
}

func NewCHPriceStore(ch *pkgch.Client, l *applogger.Logger) *CHPriceStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHPriceStore{ch: ch, db: ch.DB(), l: l, now: time.Now}
}

// Init creates the table if missing.
func (s *CHPriceStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, PriceSchema)
}

func (s *CHPriceStore) StoreBatch(ctx context.Context, prices []models.ClosePrice) error {
	if err := s.ch.BatchInsert(ctx, insertCloses, closeRows(prices)); err != nil {
		s.l.Error("clickhouse store closes error", applogger.Int("rows", len(prices)), applogger.Error(err))
		return fmt.Errorf("store closes: %w", err)
	}
	return nil
}

func (s *CHPriceStore) Fetch(ctx context.Context, tickers []string, lookbackDays int) ([]models.ClosePrice, error) {
	if len(tickers) == 0 {
		return nil, nil
	}
	from := s.now().UTC().AddDate(0, 0, -lookbackDays)
	q, args := fetchQuery(tickers, from)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse fetch closes query error", applogger.Int("tickers", len(tickers)), applogger.Error(err))
		return nil, fmt.Errorf("%w: fetch closes: %w", models.ErrUpstreamService, err)
	}
	defer rows.Close()

	out := make([]models.ClosePrice, 0, len(tickers)*lookbackDays)
	for rows.Next() {
		var p models.ClosePrice
		if err := rows.Scan(&p.Date, &p.Ticker, &p.Close); err != nil {
			return nil, fmt.Errorf("%w: scan close: %w", models.ErrUpstreamService, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %w", models.ErrUpstreamService, err)
	}
	return out, nil
}

// Latest returns the most recent archived date, zero when empty.
func (s *CHPriceStore) Latest(ctx context.Context) (time.Time, error) {
	var t sql.NullTime
	if err := s.db.QueryRowContext(ctx, "SELECT maxOrNull(date) FROM daily_closes").Scan(&t); err != nil {
		return time.Time{}, fmt.Errorf("latest close date: %w", err)
	}
	if !t.Valid {
		return time.Time{}, nil
	}
	return t.Time, nil
}

func fetchQuery(tickers []string, from time.Time) (string, []any) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(tickers)), ", ")
	q := `
        SELECT date, ticker, argMax(close, ingested_at) AS close
        FROM daily_closes
        WHERE ticker IN (` + placeholders + `) AND date >= ?
        GROUP BY date, ticker
        ORDER BY date ASC, ticker ASC
    `
	args := make([]any, 0, len(tickers)+1)
	for _, t := range tickers {
		args = append(args, t)
	}
	args = append(args, util.Day(from))
	return q, args
}

func closeRows(prices []models.ClosePrice) [][]any {
	rows := make([][]any, len(prices))
	for i, p := range prices {
		rows[i] = []any{util.Day(p.Date), p.Ticker, p.Close}
	}
	return rows
}

var (
	_ domrepo.PriceFeed    = (*CHPriceStore)(nil)
	_ domrepo.PriceArchive = (*CHPriceStore)(nil)
)
