package service

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// SubmissionGate allows at most one outstanding analysis per session
type SubmissionGate struct {
	mu       sync.Mutex
	sessions map[string]*semaphore.Weighted
}

// NewSubmissionGate creates an empty gate
func NewSubmissionGate() *SubmissionGate {
	return &SubmissionGate{sessions: make(map[string]*semaphore.Weighted)}
}

// TryAcquire claims the session without blocking. The returned release func
// must be called exactly once when ok is true.
func (g *SubmissionGate) TryAcquire(session string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sem, exists := g.sessions[session]
	if !exists {
		sem = semaphore.NewWeighted(1)
		g.sessions[session] = sem
	}
	if !sem.TryAcquire(1) {
		return nil, false
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			sem.Release(1)
			// The holder was the only user, so the entry can go
			delete(g.sessions, session)
		})
	}, true
}

// Outstanding returns the number of sessions with an analysis in progress
func (g *SubmissionGate) Outstanding() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}
