package core

import (
	"errors"
	"sync"

	"github.com/huangsam/asmstats/schema"
)

// ErrStaleCycle is returned when a cycle commits after a newer cycle has begun.
var ErrStaleCycle = errors.New("query cycle superseded by a newer cycle")

// Session owns the result of the latest query cycle.
// It is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	seq     uint64
	current *schema.QueryOutcome
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// Begin issues the next cycle number.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Commit stores the outcome of a cycle if no newer cycle has begun since.
func (s *Session) Commit(cycle uint64, outcome schema.QueryOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cycle != s.seq {
		return ErrStaleCycle
	}
	outcome.Cycle = cycle
	s.current = &outcome
	return nil
}

// Current returns the last committed outcome.
func (s *Session) Current() (schema.QueryOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return schema.QueryOutcome{}, false
	}
	return *s.current, true
}

// Latest returns the newest cycle number issued so far.
func (s *Session) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}
