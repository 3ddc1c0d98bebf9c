// Package store keeps the cached snapshot of each entity collection. Snapshots
// are replaced wholesale by Refresh and patched locally after successful writes.
// Backend failures are logged and reported as false, never returned as errors.
package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Fetcher loads the full collection in its display order
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Store holds one collection snapshot. Only Store methods mutate it.
type Store[T any] struct {
	name   string
	fetch  Fetcher[T]
	logger *zap.Logger

	mu       sync.RWMutex
	items    []T
	inFlight int
	// seq increases on every fetch start and local patch. A fetch result is
	// applied only if seq has not moved since that fetch started.
	seq uint64
	// lastFetch is the seq of the newest fetch start
	lastFetch  uint64
	loaded     bool
	closed     bool
	lastLoaded time.Time
}

// New creates an empty store for the named collection
func New[T any](name string, fetch Fetcher[T], logger *zap.Logger) *Store[T] {
	return &Store[T]{
		name:   name,
		fetch:  fetch,
		logger: logger.With(zap.String("store", name)),
		items:  []T{},
	}
}

// Name returns the collection name
func (s *Store[T]) Name() string {
	return s.name
}

// maxFollowUps bounds how often one Refresh refetches after local writes
// overtook its result
const maxFollowUps = 3

// Refresh fetches the whole collection and replaces the snapshot. A result
// overtaken by a local write is refetched, since it may carry the only copy of
// a remote change. It returns false when the fetch failed, a newer fetch took
// over, the follow-ups ran out or the store was closed.
func (s *Store[T]) Refresh(ctx context.Context) bool {
	for attempt := 0; ; attempt++ {
		applied, again := s.fetchOnce(ctx)
		if !again {
			return applied
		}
		if attempt >= maxFollowUps {
			s.logger.Warn("giving up refetch after repeated local writes",
				zap.Int("attempts", attempt+1))
			return false
		}
		s.logger.Debug("local write overtook fetch, refetching")
	}
}

// fetchOnce runs one fetch. again is true when the result was discarded only
// because a local patch happened meanwhile.
func (s *Store[T]) fetchOnce(ctx context.Context) (applied, again bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, false
	}
	s.seq++
	gen := s.seq
	s.lastFetch = gen
	s.inFlight++
	s.mu.Unlock()

	items, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--

	if err != nil {
		s.logger.Error("failed to fetch collection", zap.Error(err))
		return false, false
	}
	if s.closed {
		s.logger.Debug("discarding fetch result after close")
		return false, false
	}
	if gen != s.seq {
		if gen != s.lastFetch {
			s.logger.Debug("discarding superseded fetch result",
				zap.Uint64("generation", gen),
				zap.Uint64("latest", s.lastFetch))
			return false, false
		}
		return false, ctx.Err() == nil
	}
	if items == nil {
		items = []T{}
	}
	s.items = items
	s.loaded = true
	s.lastLoaded = time.Now()
	return true, false
}

// Snapshot returns a copy of the current items
func (s *Store[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Loading reports whether any fetch is in flight
func (s *Store[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// Loaded reports whether at least one fetch has been applied
func (s *Store[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// LastLoaded returns when the snapshot was last replaced by a fetch
func (s *Store[T]) LastLoaded() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastLoaded
}

// Close discards every later fetch result. The snapshot stays readable.
func (s *Store[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Closed reports whether Close was called
func (s *Store[T]) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// patch applies a local edit to the snapshot. Fetches started before the
// patch are discarded so they cannot revert it; Refresh fetches again.
func (s *Store[T]) patch(fn func(items []T) []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.seq++
	s.items = fn(s.items)
}

func (s *Store[T]) find(match func(*T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.items {
		if match(&s.items[i]) {
			return s.items[i], true
		}
	}
	var zero T
	return zero, false
}

func replaceWhere[T any](items []T, match func(*T) bool, edit func(*T)) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := range out {
		if match(&out[i]) {
			edit(&out[i])
		}
	}
	return out
}

func removeWhere[T any](items []T, match func(*T) bool) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if !match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

func prepend[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}
