package port

import (
	"context"

	"etfmon/internal/domain"
)

// Publisher receives every published snapshot and every accepted transaction.
// Implementations must treat the snapshot as read-only.
type Publisher interface {
	Name() string
	PublishSnapshot(ctx context.Context, snap domain.Snapshot) error
	// PublishTransaction signals that inst needs recalculating after tx was appended.
	PublishTransaction(ctx context.Context, inst *domain.Instrument, tx domain.Transaction) error
}
