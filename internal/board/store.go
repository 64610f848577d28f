package board

import (
	"context"
	"sync"
	"time"
)

// Status describes the health of the polling loop.
type Status struct {
	LastSuccess         time.Time
	LastError           string
	LastErrorAt         time.Time
	ConsecutiveFailures int
	Polls               int
}

// Store holds the last good board in a thread-safe manner.
type Store struct {
	mu     sync.RWMutex
	board  Board
	ok     bool
	status Status
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Render replaces the current board. It lets the store act as a renderer.
func (s *Store) Render(_ context.Context, b Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = b
	s.ok = true
	s.status.Polls++
	s.status.LastSuccess = b.UpdatedAt
	s.status.ConsecutiveFailures = 0
	return nil
}

// RecordError notes a failed poll. The current board is left untouched.
func (s *Store) RecordError(err error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Polls++
	s.status.LastError = err.Error()
	s.status.LastErrorAt = at
	s.status.ConsecutiveFailures++
}

// Board returns the last good board and whether one exists.
func (s *Store) Board() (Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board, s.ok
}

// Status returns a copy of the polling status.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
