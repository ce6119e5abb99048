package service

import (
	"context"
	"sync"

	"trackit/internal/model"
)

// Selector tracks the selected date per key (a chat, a session). Selecting a new date
// cancels the work started for the previous one.
type Selector[K comparable] struct {
	mu      sync.Mutex
	seq     uint64
	current map[K]*Ticket
	dates   map[K]model.Date
}

func NewSelector[K comparable]() *Selector[K] {
	return &Selector[K]{
		current: make(map[K]*Ticket),
		dates:   make(map[K]model.Date),
	}
}

// Ticket is one date selection. Its context is cancelled once a newer selection for the
// same key starts or the ticket is released.
type Ticket struct {
	Date model.Date

	ctx    context.Context
	cancel context.CancelFunc
	seq    uint64
	isLive func(seq uint64) bool
}

func (t *Ticket) Context() context.Context { return t.ctx }

// Current reports whether this is still the latest selection for its key. Results of a
// stale ticket must be dropped.
func (t *Ticket) Current() bool {
	return t.ctx.Err() == nil && t.isLive(t.seq)
}

// Select records day for key and returns a ticket for the work it triggers.
func (s *Selector[K]) Select(parent context.Context, key K, day model.Date) *Ticket {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.current[key]; ok {
		prev.cancel()
	}
	s.seq++
	seq := s.seq
	t := &Ticket{
		Date:   day,
		ctx:    ctx,
		cancel: cancel,
		seq:    seq,
		isLive: func(seq uint64) bool {
			s.mu.Lock()
			defer s.mu.Unlock()
			cur, ok := s.current[key]
			return ok && cur.seq == seq
		},
	}
	s.current[key] = t
	s.dates[key] = day
	return t
}

// Release frees the ticket's context. The selected date stays recorded.
func (s *Selector[K]) Release(t *Ticket) {
	t.cancel()
}

// Selected returns the last date selected for key.
func (s *Selector[K]) Selected(key K) (model.Date, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.dates[key]
	return day, ok
}
