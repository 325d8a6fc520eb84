package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"etfmon/internal/domain"
)

// newTestRepo connects to ETFMON_TEST_POSTGRES_DSN and skips when it is unset.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	dsn := os.Getenv("ETFMON_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ETFMON_TEST_POSTGRES_DSN not set")
	}
	repo, err := New(dsn)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestUpsertLatestPrice(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	isin := "TEST" + uuid.NewString()[:8]

	if err := repo.UpsertLatestPrice(ctx, isin, "World", 80, 1); err != nil {
		t.Fatalf("UpsertLatestPrice failed: %v", err)
	}
	if err := repo.UpsertLatestPrice(ctx, isin, "World", 82, 2); err != nil {
		t.Fatalf("UpsertLatestPrice failed: %v", err)
	}

	var price float64
	if err := repo.db.QueryRowContext(ctx, `SELECT price FROM etf_prices WHERE isin=$1`, isin).Scan(&price); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if price != 82 {
		t.Errorf("expected 82, got %v", price)
	}
}

func TestInsertSnapshotAndTransaction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	snap := domain.Snapshot{ID: uuid.NewString(), Taken: time.Now(), Prices: map[string]float64{"World": 80}}
	if err := repo.InsertSnapshot(ctx, snap, `{"prices":{"World":80}}`); err != nil {
		t.Fatalf("InsertSnapshot failed: %v", err)
	}
	tx, _ := domain.NewTransaction(1, 75, "2024-01-02")
	if err := repo.InsertTransaction(ctx, "IE00B4L5Y983", tx, 1); err != nil {
		t.Fatalf("InsertTransaction failed: %v", err)
	}
}
