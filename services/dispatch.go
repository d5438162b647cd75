// Package services translates user actions into API calls and settles them
// against the collection stores: an in-place patch for single-record status
// flips, a full refetch for anything that changes list membership.
package services

import (
	"errors"
	"sync"
)

// ErrActionInFlight is returned when a mutation targets a record that
// already has one executing. The UI disables the triggering control while a
// call is in flight; this guard backs that up so a double-click can never
// execute the same mutation twice.
var ErrActionInFlight = errors.New("action already in flight for this record")

type actionGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func newActionGuard() *actionGuard {
	return &actionGuard{inflight: make(map[string]struct{})}
}

// begin reserves the id, returning false when it is already reserved.
func (g *actionGuard) begin(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[id]; busy {
		return false
	}
	g.inflight[id] = struct{}{}
	return true
}

func (g *actionGuard) end(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, id)
}
