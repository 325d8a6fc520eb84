package poller

import (
	"sync"

	"etfmon/internal/domain"
)

// State holds the last published snapshot. Readers only ever see a complete one.
type State struct {
	mu     sync.RWMutex
	latest domain.Snapshot
	cycles int
}

func NewState() *State {
	return &State{latest: domain.Snapshot{Prices: map[string]float64{}}}
}

// Cold reports whether no cycle has completed yet.
func (s *State) Cold() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cycles == 0
}

// Swap replaces the snapshot. snap must not be modified afterwards.
func (s *State) Swap(snap domain.Snapshot) {
	s.mu.Lock()
	s.latest = snap
	s.cycles++
	s.mu.Unlock()
}

// Latest returns a copy of the current snapshot.
func (s *State) Latest() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest.Clone()
}

// Cycles is the number of completed poll cycles.
func (s *State) Cycles() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cycles
}
