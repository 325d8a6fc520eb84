package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"etfmon/internal/application/port"
	"etfmon/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Repo keeps the latest prices in a hash and pushes events to a pub/sub channel.
// It is both a repository and a publisher.
type Repo struct {
	rdb         *redis.Client
	prefix      string
	ttl         time.Duration
	keyLatest   string // prefix + ":latest"
	keySnapshot string // prefix + ":snapshot"
	txStream    string
	eventChan   string
}

type LatestPrice struct {
	ISIN  string  `json:"isin"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Ts    int64   `json:"ts"`
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, eventChan string) *Repo {
	if strings.TrimSpace(eventChan) == "" {
		eventChan = prefix + ":events"
	}
	return &Repo{
		rdb:         rdb,
		prefix:      prefix,
		ttl:         ttl,
		keyLatest:   prefix + ":latest",
		keySnapshot: prefix + ":snapshot",
		txStream:    prefix + ":transactions",
		eventChan:   eventChan,
	}
}

func (r *Repo) Name() string { return "redis" }

// Close is a no-op, the client is owned by the container.
func (r *Repo) Close() error { return nil }

func (r *Repo) UpsertLatestPrice(ctx context.Context, isin, name string, price float64, ts int64) error {
	lp := LatestPrice{ISIN: isin, Name: name, Price: price, Ts: ts}
	b, _ := json.Marshal(lp)

	// Hash: field = instrument name -> json
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, r.keyLatest, name, string(b))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyLatest, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Repo) InsertSnapshot(ctx context.Context, snap domain.Snapshot, payload string) error {
	return r.rdb.Set(ctx, r.keySnapshot, payload, r.ttl).Err()
}

func (r *Repo) InsertTransaction(ctx context.Context, isin string, tx domain.Transaction, ts int64) error {
	return r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.txStream,
		Values: map[string]any{
			"ts_ms":          ts,
			"isin":           isin,
			"amount":         tx.Amount,
			"purchase_price": tx.PurchasePrice,
			"purchase_date":  tx.PurchaseDate,
		},
	}).Err()
}

func (r *Repo) PublishSnapshot(ctx context.Context, snap domain.Snapshot) error {
	return r.publish(ctx, port.NewSnapshotEvent(snap))
}

func (r *Repo) PublishTransaction(ctx context.Context, inst *domain.Instrument, tx domain.Transaction) error {
	return r.publish(ctx, port.NewTransactionEvent(inst, tx))
}

func (r *Repo) publish(ctx context.Context, evt port.Event) error {
	msg, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.eventChan, msg).Err()
}

var (
	_ port.Repository = (*Repo)(nil)
	_ port.Publisher  = (*Repo)(nil)
)
