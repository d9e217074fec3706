package state

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/tailored-agentic-units/contract-review/observability"
)

// Reader exposes committed values.
type Reader interface {
	Read(scope, key string) (any, bool)
}

// Writer queues values for the next commit.
type Writer interface {
	Write(scope, key string, value any)
}

type write struct {
	scope string
	key   string
	value any
}

// Store is a scoped key-value store with queued writes. The zero value is
// not usable; create stores with New. All methods are safe for concurrent use.
type Store struct {
	data     map[string]map[string]any
	queue    []write
	observer observability.Observer
	mu       sync.RWMutex
	qmu      sync.Mutex
}

// New creates an empty Store. If observer is nil, NoOpObserver is used.
func New(observer observability.Observer) *Store {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	return &Store{
		data:     make(map[string]map[string]any),
		observer: observer,
	}
}

// Read returns the committed value for (scope, key). The boolean is false
// when nothing has been committed there.
func (s *Store) Read(scope, key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.data[scope]
	if !ok {
		return nil, false
	}
	val, ok := entries[key]
	return val, ok
}

// Write queues value for (scope, key). It is not visible to Read until
// Commit.
func (s *Store) Write(scope, key string, value any) {
	s.qmu.Lock()
	s.queue = append(s.queue, write{scope: scope, key: key, value: value})
	pending := len(s.queue)
	s.qmu.Unlock()

	s.observer.OnEvent(context.Background(), observability.Event{
		Type:      EventStateWrite,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "state",
		Data: map[string]any{
			"scope":   scope,
			"key":     key,
			"pending": pending,
		},
	})
}

// Pending returns the number of queued writes.
func (s *Store) Pending() int {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	return len(s.queue)
}

// Commit applies queued writes in queue order and returns how many were
// applied. Later writes to the same (scope, key) win.
func (s *Store) Commit(ctx context.Context) int {
	s.qmu.Lock()
	queue := s.queue
	s.queue = nil
	s.qmu.Unlock()

	if len(queue) == 0 {
		return 0
	}

	s.mu.Lock()
	for _, w := range queue {
		entries, ok := s.data[w.scope]
		if !ok {
			entries = make(map[string]any)
			s.data[w.scope] = entries
		}
		entries[w.key] = w.value
	}
	s.mu.Unlock()

	s.observer.OnEvent(ctx, observability.Event{
		Type:      EventStateCommit,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "state",
		Data:      map[string]any{"writes": len(queue)},
	})

	return len(queue)
}

// Discard drops queued writes and returns how many were dropped.
func (s *Store) Discard(ctx context.Context) int {
	s.qmu.Lock()
	dropped := len(s.queue)
	s.queue = nil
	s.qmu.Unlock()

	if dropped > 0 {
		s.observer.OnEvent(ctx, observability.Event{
			Type:      EventStateDiscard,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "state",
			Data:      map[string]any{"writes": dropped},
		})
	}

	return dropped
}

// Scopes returns the committed scope names in sorted order.
func (s *Store) Scopes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data))
}

// Keys returns the committed keys of scope in sorted order.
func (s *Store) Keys(scope string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data[scope]))
}

// Snapshot returns a copy of every committed entry. Values are not deep
// copied.
func (s *Store) Snapshot() map[string]map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]map[string]any, len(s.data))
	for scope, entries := range s.data {
		out[scope] = maps.Clone(entries)
	}
	return out
}

// Lookup reads (scope, key) from r as a T.
func Lookup[T any](r Reader, scope, key string) (T, error) {
	var zero T

	val, ok := r.Read(scope, key)
	if !ok {
		return zero, fmt.Errorf("%w: %s/%s", ErrNotFound, scope, key)
	}

	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s/%s holds %T, want %T", ErrTypeMismatch, scope, key, val, zero)
	}
	return typed, nil
}
