// Package memory implements the repository interfaces over an in-process
// dataset. Writes publish change events so live consumers behave the same
// as against the database.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/driftportal/facility-api/internal/realtime"
	"github.com/driftportal/facility-api/internal/repository"
)

// table is a mutex-guarded row set. Reads return copies.
type table[T any] struct {
	mu    sync.RWMutex
	name  string
	rows  map[uuid.UUID]T
	idOf  func(*T) uuid.UUID
	pub   realtime.Publisher
	clock func() time.Time
}

func newTable[T any](name string, rows []T, idOf func(*T) uuid.UUID, pub realtime.Publisher, clock func() time.Time) *table[T] {
	t := &table[T]{
		name:  name,
		rows:  make(map[uuid.UUID]T, len(rows)),
		idOf:  idOf,
		pub:   pub,
		clock: clock,
	}
	for i := range rows {
		t.rows[idOf(&rows[i])] = rows[i]
	}
	return t
}

func (t *table[T]) all(less func(a, b *T) bool) []T {
	t.mu.RLock()
	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, row)
	}
	t.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if less(&out[i], &out[j]) {
			return true
		}
		if less(&out[j], &out[i]) {
			return false
		}
		// map iteration is random; fall back to id for a deterministic order
		a, b := t.idOf(&out[i]), t.idOf(&out[j])
		return a.String() < b.String()
	})
	return out
}

func (t *table[T]) filter(keep func(*T) bool, less func(a, b *T) bool, limit int) []T {
	rows := t.all(less)
	out := make([]T, 0, len(rows))
	for i := range rows {
		if keep(&rows[i]) {
			out = append(out, rows[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

func (t *table[T]) get(id uuid.UUID) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

func (t *table[T]) insert(row T) {
	t.mu.Lock()
	t.rows[t.idOf(&row)] = row
	t.mu.Unlock()
	t.notify(realtime.OpInsert)
}

// modify applies fn to the stored row under the write lock
func (t *table[T]) modify(id uuid.UUID, fn func(*T)) error {
	t.mu.Lock()
	row, ok := t.rows[id]
	if !ok {
		t.mu.Unlock()
		return repository.ErrNotFound
	}
	fn(&row)
	t.rows[id] = row
	t.mu.Unlock()
	t.notify(realtime.OpUpdate)
	return nil
}

func (t *table[T]) remove(id uuid.UUID) error {
	t.mu.Lock()
	if _, ok := t.rows[id]; !ok {
		t.mu.Unlock()
		return repository.ErrNotFound
	}
	delete(t.rows, id)
	t.mu.Unlock()
	t.notify(realtime.OpDelete)
	return nil
}

func (t *table[T]) notify(op realtime.Op) {
	if t.pub == nil {
		return
	}
	t.pub.Publish(realtime.Event{Table: t.name, Op: op, At: t.clock()})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
