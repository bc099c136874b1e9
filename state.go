package corkboard

import (
	"sync"
	"time"

	internalbackoff "github.com/ambiyansyah-risyal/corkboard/internal/backoff"
)

// requestState is the only mutable state shared between calls: the last
// admission time per throttle class and the 429 backoff scalar. Both sit
// behind one mutex.
type requestState struct {
	mu         sync.Mutex
	lastIssued map[string]time.Time
	backoff    float64
	progress   internalbackoff.Doubling
}

func newRequestState(progress internalbackoff.Doubling) *requestState {
	return &requestState{
		lastIssued: make(map[string]time.Time),
		backoff:    progress.Reset(),
		progress:   progress,
	}
}

// escalate doubles the scalar. It reports false, leaving the scalar alone,
// when the ceiling had already been reached.
func (s *requestState) escalate() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.progress.Next(s.backoff)
	if !ok {
		return s.backoff, false
	}
	s.backoff = next
	return next, true
}

func (s *requestState) resetBackoff() {
	s.mu.Lock()
	s.backoff = s.progress.Reset()
	s.mu.Unlock()
}

func (s *requestState) backoffUnits() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backoff
}
