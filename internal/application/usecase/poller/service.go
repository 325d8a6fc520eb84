package poller

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"etfmon/internal/domain"
)

const (
	DefaultInterval     = 300 * time.Second
	MinInterval         = 60 * time.Second
	DefaultFetchTimeout = 10 * time.Second
)

type ServiceDeps struct {
	Portfolio    *domain.Portfolio
	Source       PriceSource
	Publishers   []Publisher
	Repo         Repository
	Interval     time.Duration
	FetchTimeout time.Duration
	Now          func() time.Time
}

// Service polls every instrument of the portfolio on a fixed interval and
// publishes a name-keyed price snapshot after each cycle.
type Service struct {
	deps  ServiceDeps
	st    *State
	cycle sync.Mutex
}

func NewService(deps ServiceDeps) *Service {
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	if deps.Interval < MinInterval {
		deps.Interval = MinInterval
	}
	if deps.FetchTimeout <= 0 {
		deps.FetchTimeout = DefaultFetchTimeout
	}
	if deps.Repo == nil {
		deps.Repo = NewNoopRepo()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps, st: NewState()}
}

// Portfolio exposes the polled portfolio to readers.
func (s *Service) Portfolio() *domain.Portfolio { return s.deps.Portfolio }

// Latest returns a copy of the last published snapshot.
func (s *Service) Latest() domain.Snapshot { return s.st.Latest() }

// Run refreshes once immediately, then on every tick until ctx ends.
func (s *Service) Run(ctx context.Context) error {
	if s.deps.Source == nil {
		return errors.New("no price source")
	}
	if s.deps.Portfolio == nil {
		return errors.New("no portfolio")
	}

	s.Refresh(ctx)

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	log.Info().
		Str("source", s.deps.Source.Name()).
		Dur("interval", s.deps.Interval).
		Msg("poller started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh runs one poll cycle. The first cycle always polls; later cycles
// only poll while the market is open. When nothing was polled the previous
// snapshot is returned with false.
func (s *Service) Refresh(ctx context.Context) (domain.Snapshot, bool) {
	s.cycle.Lock()
	defer s.cycle.Unlock()

	now := s.deps.Now()
	if !s.st.Cold() && !s.deps.Portfolio.IsMarketOpen(now) {
		log.Debug().Time("now", now).Msg("market closed, poll skipped")
		return s.st.Latest(), false
	}

	instruments := s.deps.Portfolio.Instruments()
	snap := domain.Snapshot{
		ID:     uuid.NewString(),
		Taken:  now,
		Prices: make(map[string]float64, len(instruments)),
	}
	log.Info().
		Str("cycle", snap.ID).
		Int("instruments", len(instruments)).
		Msg("polling prices")

	// removals are applied after the loop, never while iterating
	var dropped []*domain.Instrument
	for _, inst := range instruments {
		if ctx.Err() != nil {
			break
		}
		price, err := s.fetch(ctx, inst)
		switch {
		case err == nil:
			snap.Prices[inst.Name] = price
		case errors.Is(err, domain.ErrBadIdentifier):
			log.Error().
				Err(err).
				Str("name", inst.Name).
				Str("isin", inst.ISIN).
				Msg("vendor rejected instrument, check the isin in the portfolio file; dropping it")
			dropped = append(dropped, inst)
		default:
			log.Warn().
				Err(err).
				Str("name", inst.Name).
				Str("isin", inst.ISIN).
				Msg("price fetch failed, retrying next cycle")
		}
	}
	for _, inst := range dropped {
		s.deps.Portfolio.Remove(inst.ISIN)
	}

	s.st.Swap(snap)
	s.publish(ctx, snap)

	log.Info().
		Str("cycle", snap.ID).
		Int("priced", snap.Len()).
		Int("dropped", len(dropped)).
		Msg("poll cycle done")

	return snap.Clone(), true
}

func (s *Service) fetch(ctx context.Context, inst *domain.Instrument) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.deps.FetchTimeout)
	defer cancel()
	return inst.FetchCurrentPrice(ctx, s.deps.Source)
}

func (s *Service) publish(ctx context.Context, snap domain.Snapshot) {
	for _, p := range s.deps.Publishers {
		if err := p.PublishSnapshot(ctx, snap); err != nil {
			log.Warn().Err(err).Str("publisher", p.Name()).Msg("publish snapshot failed")
		}
	}

	ts := snap.Taken.UnixMilli()
	for _, inst := range s.deps.Portfolio.Instruments() {
		price, ok := snap.Price(inst.Name)
		if !ok {
			continue
		}
		if err := s.deps.Repo.UpsertLatestPrice(ctx, inst.ISIN, inst.Name, price, ts); err != nil {
			log.Warn().Err(err).Str("isin", inst.ISIN).Msg("persist latest price failed")
		}
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		log.Warn().Err(err).Msg("encode snapshot failed")
		return
	}
	if err := s.deps.Repo.InsertSnapshot(ctx, snap, string(payload)); err != nil {
		log.Warn().Err(err).Msg("persist snapshot failed")
	}
}
