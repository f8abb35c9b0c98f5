package policy

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrTableFull is returned by Table.Insert when the table is already
// at capacity. Callers are expected to treat this as "the row was
// rejected, the event falls through as if the process were not
// containerized" rather than as a fatal error.
var ErrTableFull = errors.New("policy: table at capacity")

// Table is a fixed-capacity associative table with per-key atomic
// insert/lookup and no locking beyond a single mutex acquisition per
// call. It never grows past Cap: Insert into a full table returns
// ErrTableFull instead of silently evicting an existing row.
//
// Insert is insert-if-absent (compare-and-swap on key presence), not
// a blind upsert: this is what makes the Lineage Tracker idempotent
// and keeps process bindings stable under concurrent, possibly
// duplicate, event delivery.
type Table[K comparable, V any] struct {
	cap int
	mu  sync.RWMutex
	m   map[K]V
}

// NewTable constructs a table with the given fixed capacity.
func NewTable[K comparable, V any](cap int) *Table[K, V] {
	return &Table[K, V]{
		cap: cap,
		m:   make(map[K]V, cap),
	}
}

// Cap returns the table's fixed capacity.
func (t *Table[K, V]) Cap() int {
	return t.cap
}

// Len returns the current number of occupied slots.
func (t *Table[K, V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.m)
}

// Get looks up key and reports whether it was present. It never
// mutates the table and never blocks on a writer for longer than a
// single lock acquisition.
func (t *Table[K, V]) Get(key K) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.m[key]
	return v, ok
}

// Insert inserts key/value if key is absent. If key is already
// present, Insert is a no-op and returns (false, nil) — this is the
// idempotency the Lineage Tracker relies on. If the table is full and
// key is absent, it returns (false, ErrTableFull).
func (t *Table[K, V]) Insert(key K, value V) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.m[key]; ok {
		return false, nil
	}
	if len(t.m) >= t.cap {
		return false, ErrTableFull
	}
	t.m[key] = value
	return true, nil
}

// Upsert inserts or overwrites key/value, subject to the same
// capacity bound as Insert. Used by collaborator-owned tables
// (containers, path tables) where the collaborator is authoritative
// and a rewrite is a legitimate policy update, not a race.
func (t *Table[K, V]) Upsert(key K, value V) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.m[key]; !ok && len(t.m) >= t.cap {
		return ErrTableFull
	}
	t.m[key] = value
	return nil
}

// Delete removes key, if present. Deleting an absent key is a no-op.
func (t *Table[K, V]) Delete(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.m, key)
}

// Range calls fn for every occupied slot, in an unspecified order,
// stopping early if fn returns false. Range holds the read lock for
// its duration; fn must not call back into the table.
func (t *Table[K, V]) Range(fn func(key K, value V) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for k, v := range t.m {
		if !fn(k, v) {
			return
		}
	}
}
