package domain

import (
	"fmt"
	"sync"
	"time"
)

// Default trading window.
const (
	DefaultOpenHour  = 8
	DefaultCloseHour = 22
	DefaultWorkdays  = 5
)

// MarketHours is the daily window in which prices move.
// Workdays counts days from Monday, so 5 means Monday to Friday.
type MarketHours struct {
	OpenHour  int
	CloseHour int
	Workdays  int
	Location  *time.Location
}

// DefaultMarketHours is 08:00-22:00 local time, Monday to Friday.
func DefaultMarketHours() MarketHours {
	return MarketHours{
		OpenHour:  DefaultOpenHour,
		CloseHour: DefaultCloseHour,
		Workdays:  DefaultWorkdays,
		Location:  time.Local,
	}
}

// IsOpen reports whether now falls inside the window. There is no holiday calendar.
func (h MarketHours) IsOpen(now time.Time) bool {
	if h.Location != nil {
		now = now.In(h.Location)
	}
	weekday := (int(now.Weekday()) + 6) % 7 // Monday = 0
	hour := now.Hour()
	return h.OpenHour <= hour && hour < h.CloseHour && weekday < h.Workdays
}

// Portfolio is the ordered list of tracked instruments.
// The list is shared between the poller and the transaction command, all access goes through mu.
type Portfolio struct {
	mu          sync.RWMutex
	instruments []*Instrument
	hours       MarketHours
}

// NewPortfolio builds a portfolio from already parsed instruments.
func NewPortfolio(hours MarketHours, instruments ...*Instrument) *Portfolio {
	list := make([]*Instrument, len(instruments))
	copy(list, instruments)
	return &Portfolio{instruments: list, hours: hours}
}

// FromConfig parses the portfolio document. A missing etfs key yields an empty portfolio.
func FromConfig(doc map[string]any, hours MarketHours) (*Portfolio, error) {
	p := NewPortfolio(hours)

	raw, ok := doc[keyETFs]
	if !ok || raw == nil {
		return p, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, &ParseError{Path: keyETFs, Reason: fmt.Sprintf("expected list, got %T", raw)}
	}

	names := make(map[string]struct{}, len(entries))
	isins := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		path := fmt.Sprintf("%s[%d]", keyETFs, i)
		m, ok := e.(map[string]any)
		if !ok {
			return nil, &ParseError{Path: path, Reason: fmt.Sprintf("expected mapping, got %T", e)}
		}
		inst, err := InstrumentFromConfig(path, m)
		if err != nil {
			return nil, err
		}
		if _, dup := names[inst.Name]; dup {
			return nil, &ParseError{Path: path + "." + keyName, Reason: fmt.Sprintf("duplicate name %q", inst.Name)}
		}
		if _, dup := isins[inst.ISIN]; dup {
			return nil, &ParseError{Path: path + "." + keyISIN, Reason: fmt.Sprintf("duplicate isin %q", inst.ISIN)}
		}
		names[inst.Name] = struct{}{}
		isins[inst.ISIN] = struct{}{}
		p.instruments = append(p.instruments, inst)
	}
	return p, nil
}

// Hours returns the trading window.
func (p *Portfolio) Hours() MarketHours { return p.hours }

// IsMarketOpen reports whether fetching makes sense at now.
func (p *Portfolio) IsMarketOpen(now time.Time) bool {
	return p.hours.IsOpen(now)
}

// Instruments returns a copy of the list, safe to range over while the portfolio changes.
func (p *Portfolio) Instruments() []*Instrument {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Instrument, len(p.instruments))
	copy(out, p.instruments)
	return out
}

// Len is the number of tracked instruments.
func (p *Portfolio) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.instruments)
}

// Find looks an instrument up by ISIN, then by name.
func (p *Portfolio) Find(key string) (*Instrument, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.findLocked(key)
}

func (p *Portfolio) findLocked(key string) (*Instrument, bool) {
	for _, inst := range p.instruments {
		if inst.ISIN == key {
			return inst, true
		}
	}
	for _, inst := range p.instruments {
		if inst.Name == key {
			return inst, true
		}
	}
	return nil, false
}

// AddTransaction appends tx to the instrument matching key.
func (p *Portfolio) AddTransaction(key string, tx Transaction) (*Instrument, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	inst, ok := p.findLocked(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInstrumentNotFound, key)
	}
	inst.AddTransaction(tx)
	return inst, nil
}

// Remove drops the instrument with the given ISIN for good. It reports whether one was removed.
func (p *Portfolio) Remove(isin string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for idx, inst := range p.instruments {
		if inst.ISIN == isin {
			p.instruments = append(p.instruments[:idx:idx], p.instruments[idx+1:]...)
			return true
		}
	}
	return false
}
