package postgres

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"etfmon/internal/application/port"
	"etfmon/internal/domain"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS etf_prices (
  isin TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  price DOUBLE PRECISION NOT NULL,
  ts_ms BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS etf_snapshots (
  id BIGSERIAL PRIMARY KEY,
  cycle_id TEXT NOT NULL,
  ts_ms BIGINT NOT NULL,
  payload JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_etf_snapshots_ts ON etf_snapshots(ts_ms);
CREATE TABLE IF NOT EXISTS etf_transactions (
  id BIGSERIAL PRIMARY KEY,
  isin TEXT NOT NULL,
  amount DOUBLE PRECISION NOT NULL,
  purchase_price DOUBLE PRECISION NOT NULL,
  purchase_date TEXT NOT NULL,
  ts_ms BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_etf_transactions_isin ON etf_transactions(isin);
`)
	return err
}

func (r *Repo) UpsertLatestPrice(ctx context.Context, isin, name string, price float64, ts int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO etf_prices(isin, name, price, ts_ms) VALUES($1, $2, $3, $4)
		ON CONFLICT(isin) DO UPDATE SET name=EXCLUDED.name, price=EXCLUDED.price, ts_ms=EXCLUDED.ts_ms
	`, isin, name, price, ts)
	return err
}

func (r *Repo) InsertSnapshot(ctx context.Context, snap domain.Snapshot, payload string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO etf_snapshots(cycle_id, ts_ms, payload) VALUES($1, $2, $3)`,
		snap.ID, snap.Taken.UnixMilli(), payload)
	return err
}

func (r *Repo) InsertTransaction(ctx context.Context, isin string, tx domain.Transaction, ts int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO etf_transactions(isin, amount, purchase_price, purchase_date, ts_ms) VALUES($1, $2, $3, $4, $5)`,
		isin, tx.Amount, tx.PurchasePrice, tx.PurchaseDate, ts)
	return err
}

var _ port.Repository = (*Repo)(nil)
