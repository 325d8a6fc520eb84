package poller

import (
	"context"

	"etfmon/internal/application/port"
	"etfmon/internal/domain"
)

type noopRepo struct{}

func NewNoopRepo() port.Repository { return &noopRepo{} }

func (n *noopRepo) UpsertLatestPrice(ctx context.Context, isin, name string, price float64, ts int64) error {
	return nil
}
func (n *noopRepo) InsertSnapshot(ctx context.Context, snap domain.Snapshot, payload string) error {
	return nil
}
func (n *noopRepo) InsertTransaction(ctx context.Context, isin string, tx domain.Transaction, ts int64) error {
	return nil
}
func (n *noopRepo) Close() error { return nil }
