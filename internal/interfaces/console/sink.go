package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"etfmon/internal/application/port"
	"etfmon/internal/application/service"
	"etfmon/internal/domain"
)

// Sink prints the valuation of every instrument after each snapshot and
// reprints an instrument right after a transaction was added to it.
type Sink struct {
	mu        sync.Mutex
	out       io.Writer
	portfolio *domain.Portfolio
	fmt       *Formatter
	last      domain.Snapshot
}

func NewSink(p *domain.Portfolio, out io.Writer, color bool) *Sink {
	if out == nil {
		out = os.Stdout
	}
	return &Sink{out: out, portfolio: p, fmt: &Formatter{Color: color}}
}

func (s *Sink) Name() string { return "console" }

func (s *Sink) PublishSnapshot(ctx context.Context, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = snap

	positions := service.Valuate(s.portfolio, snap)
	fmt.Fprintf(s.out, "\n%s\n", snap.Taken.Format("2006-01-02 15:04:05"))
	for _, pos := range positions {
		if _, err := fmt.Fprintln(s.out, s.fmt.Line(pos)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(s.out, s.fmt.Total(positions))
	return err
}

func (s *Sink) PublishTransaction(ctx context.Context, inst *domain.Instrument, tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := service.ValuateInstrument(inst, s.last)
	_, err := fmt.Fprintln(s.out, s.fmt.Line(pos))
	return err
}

var _ port.Publisher = (*Sink)(nil)
