package port

import (
	"context"

	"etfmon/internal/domain"
)

type Repository interface {
	// Price operations
	UpsertLatestPrice(ctx context.Context, isin, name string, price float64, ts int64) error

	// Snapshot operations
	InsertSnapshot(ctx context.Context, snap domain.Snapshot, payload string) error

	// Transaction journal
	InsertTransaction(ctx context.Context, isin string, tx domain.Transaction, ts int64) error

	// Connection management
	Close() error
}
