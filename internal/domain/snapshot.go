package domain

import (
	"maps"
	"time"
)

// Snapshot holds the prices fetched during one poll cycle, keyed by instrument name.
// It replaces the previous snapshot wholesale. A missing name means no data yet.
type Snapshot struct {
	ID     string             `json:"id"`
	Taken  time.Time          `json:"taken"`
	Prices map[string]float64 `json:"prices"`
}

// Price returns the fetched price for name and whether the cycle produced one.
func (s Snapshot) Price(name string) (float64, bool) {
	p, ok := s.Prices[name]
	return p, ok
}

// Len is the number of priced instruments.
func (s Snapshot) Len() int { return len(s.Prices) }

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Prices = maps.Clone(s.Prices)
	if out.Prices == nil {
		out.Prices = map[string]float64{}
	}
	return out
}
