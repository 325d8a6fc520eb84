package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"etfmon/internal/application/port"
	"etfmon/internal/domain"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

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
CREATE TABLE IF NOT EXISTS prices (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  isin TEXT NOT NULL,
  name TEXT NOT NULL,
  price REAL NOT NULL,
  ts_ms INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  UNIQUE(isin)
);
CREATE INDEX IF NOT EXISTS idx_prices_ts ON prices(ts_ms);

CREATE TABLE IF NOT EXISTS snapshots (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  cycle_id TEXT NOT NULL,
  ts_ms INTEGER NOT NULL,
  priced INTEGER NOT NULL,
  payload TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(ts_ms);

CREATE TABLE IF NOT EXISTS transactions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  isin TEXT NOT NULL,
  amount REAL NOT NULL,
  purchase_price REAL NOT NULL,
  purchase_date TEXT NOT NULL,
  ts_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_isin ON transactions(isin);
`)
	return err
}

func (r *Repo) UpsertLatestPrice(ctx context.Context, isin, name string, price float64, ts int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prices(isin, name, price, ts_ms, created_at)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(isin) DO UPDATE SET
		name=excluded.name, price=excluded.price, ts_ms=excluded.ts_ms
	`, isin, name, price, ts, ts)
	return err
}

// LatestPrice returns the last stored price for isin.
func (r *Repo) LatestPrice(ctx context.Context, isin string) (price float64, ts int64, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT price, ts_ms FROM prices WHERE isin=?`, isin).
		Scan(&price, &ts)
	return
}

func (r *Repo) InsertSnapshot(ctx context.Context, snap domain.Snapshot, payload string) error {
	ts := snap.Taken.UnixMilli()
	_, err := r.db.ExecContext(ctx, `INSERT INTO snapshots(cycle_id, ts_ms, priced, payload, created_at) VALUES(?, ?, ?, ?, ?)`,
		snap.ID, ts, snap.Len(), payload, ts)
	return err
}

// CountSnapshots is the number of stored snapshots.
func (r *Repo) CountSnapshots(ctx context.Context) (n int, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n)
	return
}

func (r *Repo) InsertTransaction(ctx context.Context, isin string, tx domain.Transaction, ts int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO transactions(isin, amount, purchase_price, purchase_date, ts_ms) VALUES(?, ?, ?, ?, ?)`,
		isin, tx.Amount, tx.PurchasePrice, tx.PurchaseDate, ts)
	return err
}

// ListTransactions returns the journaled lots of isin in insertion order.
func (r *Repo) ListTransactions(ctx context.Context, isin string) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT amount, purchase_price, purchase_date FROM transactions WHERE isin=? ORDER BY id`, isin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(&tx.Amount, &tx.PurchasePrice, &tx.PurchaseDate); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

var _ port.Repository = (*Repo)(nil)
