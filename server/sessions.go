package main

import (
	"sync"
	"time"

	"bizim-dunyamiz/server/chase"
	"bizim-dunyamiz/server/engine"
	"bizim-dunyamiz/server/games"

	"github.com/google/uuid"
)

type sessionKind string

const (
	kindKent  sessionKind = "kent"
	kindChase sessionKind = "chase"
	kindDraw  sessionKind = "draw"
)

// session is one live game on one shared phone. All mutation goes through
// do so taps from both halves of the screen serialize; seq is a monotonic
// action counter clients can use to discard stale reads.
type session struct {
	ID   string
	Kind sessionKind

	mu  sync.Mutex
	seq int64

	Kent  *engine.Game
	Chase *chase.Sim
	Draw  *games.DrawSession

	seed      int64
	startedAt time.Time
	tally     kentTally
	lastUsed  time.Time
}

func (s *session) do(fn func()) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.seq++
	s.lastUsed = time.Now()
	return s.seq
}

type registry struct {
	mu sync.RWMutex
	m  map[string]*session
}

func newRegistry() *registry {
	return &registry{m: make(map[string]*session)}
}

func (r *registry) create(kind sessionKind) *session {
	s := &session{
		ID:       uuid.NewString(),
		Kind:     kind,
		lastUsed: time.Now(),
	}
	r.mu.Lock()
	r.m[s.ID] = s
	r.mu.Unlock()
	return s
}

func (r *registry) get(id string) (*session, bool) {
	r.mu.RLock()
	s, ok := r.m[id]
	r.mu.RUnlock()
	return s, ok
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	delete(r.m, id)
	r.mu.Unlock()
}

// prune drops sessions idle longer than maxIdle and reports how many went.
func (r *registry) prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.m {
		s.mu.Lock()
		stale := s.lastUsed.Before(cutoff)
		s.mu.Unlock()
		if stale {
			delete(r.m, id)
			n++
		}
	}
	return n
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}
