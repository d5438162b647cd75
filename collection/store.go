// Package collection implements the remote-collection pattern shared by
// every dashboard list screen: fetch from the backend, normalize, hold the
// result in memory, filter locally, and apply confirmed mutations either as
// an in-place patch or a wholesale refetch.
package collection

import (
	"context"
	"sync"
)

// Record is anything the store can hold. RecordID must be stable and unique
// within one collection.
type Record interface {
	RecordID() string
}

// State is the store's lifecycle phase. Ready and Failed both accept a new
// Fetch, which moves the store back to Loading.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

// Fetcher loads and normalizes the full list from the backend, preserving
// server order.
type Fetcher[T Record] func(ctx context.Context) ([]T, error)

// EnvelopeFetcher is a Fetcher for endpoints that return sidecar data next
// to the list (stat tiles, folder sidebars). The commit function applies
// that sidecar data; the store runs it only when it accepts the response,
// so the sidecar can never come from a different response than the records.
// A nil commit is allowed.
type EnvelopeFetcher[T Record] func(ctx context.Context) ([]T, func(), error)

// Store holds the current list of normalized records for one screen
// instance, plus loading/error state and the bulk-action selection.
//
// Fetches are tagged with a monotonic sequence number and a response is
// discarded when a later-issued fetch has already settled, so rapid
// refetches can never regress the list to stale data.
type Store[T Record] struct {
	mu      sync.Mutex
	fetch   EnvelopeFetcher[T]
	records []T
	state   State
	lastErr string

	issued  uint64
	applied uint64

	selection map[string]struct{}
}

// NewStore creates an empty store in the Idle state.
func NewStore[T Record](fetch Fetcher[T]) *Store[T] {
	return NewEnvelopeStore(func(ctx context.Context) ([]T, func(), error) {
		records, err := fetch(ctx)
		return records, nil, err
	})
}

// NewEnvelopeStore creates an empty store whose fetcher also carries sidecar
// data.
func NewEnvelopeStore[T Record](fetch EnvelopeFetcher[T]) *Store[T] {
	return &Store[T]{
		fetch:     fetch,
		selection: make(map[string]struct{}),
	}
}

// Fetch loads the list and replaces the records atomically. On failure the
// previous records stay visible (stale but consistent) and the store moves
// to Failed with the error message. The selection is cleared on success.
func (s *Store[T]) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.state = Loading
	s.lastErr = ""
	s.mu.Unlock()

	records, commit, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied {
		// A later-issued fetch already settled; this response is stale.
		// Its sidecar commit is skipped along with its records.
		return nil
	}
	s.applied = seq

	if err != nil {
		// Leave records untouched.
		if seq == s.issued {
			s.state = Failed
			s.lastErr = err.Error()
		}
		return err
	}

	s.records = records
	s.selection = make(map[string]struct{})
	if commit != nil {
		commit()
	}
	if seq == s.issued {
		s.state = Ready
	}
	return nil
}

// Records returns a copy of the current list, in server order.
func (s *Store[T]) Records() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record with the given id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the current record count.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// State returns the lifecycle phase and, when Failed, the error message.
func (s *Store[T]) State() (State, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.lastErr
}

// MutateLocal patches the record with the given id in place, leaving order
// and every other record untouched. It must only be called after the server
// confirmed the matching mutation; it exists for single-field status flips
// that do not warrant a refetch.
func (s *Store[T]) MutateLocal(id string, patch func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].RecordID() == id {
			patch(&s.records[i])
			return true
		}
	}
	return false
}

// RemoveLocal drops the records with the given ids and prunes them from the
// selection in the same update. Called after a confirmed delete.
func (s *Store[T]) RemoveLocal(ids ...string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	removed := 0
	for _, r := range s.records {
		if _, gone := drop[r.RecordID()]; gone {
			removed++
			delete(s.selection, r.RecordID())
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return removed
}

// Select marks an existing record for a bulk action. Unknown ids are
// ignored, keeping the selection a subset of the current record ids.
func (s *Store[T]) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.RecordID() == id {
			s.selection[id] = struct{}{}
			return
		}
	}
}

// Deselect removes an id from the selection.
func (s *Store[T]) Deselect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selection, id)
}

// ToggleSelect flips an id's selection state.
func (s *Store[T]) ToggleSelect(id string) {
	s.mu.Lock()
	selected := false
	if _, ok := s.selection[id]; ok {
		selected = true
	}
	s.mu.Unlock()

	if selected {
		s.Deselect(id)
	} else {
		s.Select(id)
	}
}

// Selection returns the selected ids in current record order.
func (s *Store[T]) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.selection))
	for _, r := range s.records {
		if _, ok := s.selection[r.RecordID()]; ok {
			out = append(out, r.RecordID())
		}
	}
	return out
}

// ClearSelection empties the selection; called after every successful bulk
// action.
func (s *Store[T]) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]struct{})
}
