package poller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"etfmon/internal/domain"
)

// AddTransaction appends a purchase lot to the matching instrument and
// notifies publishers right away instead of waiting for the next cycle.
// Unknown targets fail with domain.ErrInstrumentNotFound and change nothing.
func (s *Service) AddTransaction(ctx context.Context, cmd TransactionCommand) (domain.Transaction, error) {
	key := strings.TrimSpace(cmd.EntityID)
	if key == "" {
		return domain.Transaction{}, fmt.Errorf("%w: entity_id is empty", domain.ErrInvalidCommand)
	}

	now := s.deps.Now()
	date := strings.TrimSpace(cmd.Date)
	if date == "" {
		date = s.today(now)
	}

	tx, err := domain.NewTransaction(cmd.Amount, cmd.Price, date)
	if err != nil {
		return domain.Transaction{}, err
	}

	inst, err := s.deps.Portfolio.AddTransaction(key, tx)
	if err != nil {
		return domain.Transaction{}, err
	}

	log.Info().
		Str("name", inst.Name).
		Str("isin", inst.ISIN).
		Float64("amount", tx.Amount).
		Float64("price", tx.PurchasePrice).
		Str("date", tx.PurchaseDate).
		Msg("transaction added")

	if err := s.deps.Repo.InsertTransaction(ctx, inst.ISIN, tx, now.UnixMilli()); err != nil {
		log.Warn().Err(err).Str("isin", inst.ISIN).Msg("journal transaction failed")
	}
	for _, p := range s.deps.Publishers {
		if err := p.PublishTransaction(ctx, inst, tx); err != nil {
			log.Warn().Err(err).Str("publisher", p.Name()).Msg("publish transaction failed")
		}
	}
	return tx, nil
}

func (s *Service) today(now time.Time) string {
	if loc := s.deps.Portfolio.Hours().Location; loc != nil {
		now = now.In(loc)
	}
	return now.Format(domain.DateLayout)
}
