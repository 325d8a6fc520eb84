package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"etfmon/internal/domain"
	"etfmon/internal/infrastructure/config"
)

func TestNewWithoutStorage(t *testing.T) {
	c, err := New(config.Default())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Close()

	if c.Repository() != nil {
		t.Errorf("expected nil repository when no backend is enabled")
	}
	if len(c.Publishers()) != 0 {
		t.Errorf("expected no publishers, got %d", len(c.Publishers()))
	}
}

func TestNewWithSQLite(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.SQLite.Enabled = true
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "etf.db")

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	repo := c.Repository()
	if repo == nil {
		t.Fatal("expected repository")
	}
	ctx := context.Background()
	if err := repo.UpsertLatestPrice(ctx, "IE00B4L5Y983", "World", 101.5, 1); err != nil {
		t.Fatalf("UpsertLatestPrice failed: %v", err)
	}
	tx, _ := domain.NewTransaction(2, 90, "2024-01-01")
	if err := repo.InsertTransaction(ctx, "IE00B4L5Y983", tx, 1); err != nil {
		t.Fatalf("InsertTransaction failed: %v", err)
	}

	price, _, err := c.SQLiteRepo().LatestPrice(ctx, "IE00B4L5Y983")
	if err != nil {
		t.Fatalf("LatestPrice failed: %v", err)
	}
	if price != 101.5 {
		t.Errorf("expected 101.5, got %v", price)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// second close is a no-op
	if err := c.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestNewFailsOnBadSQLitePath(t *testing.T) {
	// a regular file where the database directory should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Storage.SQLite.Enabled = true
	cfg.Storage.SQLite.Path = filepath.Join(blocker, "etf.db")

	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unreachable sqlite path")
	}
}
