package cache

import (
	"sync"
	"time"

	"evalboard/domain/core"

	"golang.org/x/sync/singleflight"
)

type entry[T any] struct {
	value   T
	expires time.Time
}

// Memo memoizes computations by selection key for a fixed TTL. Errors are
// never cached.
type Memo[T any] struct {
	ttl   time.Duration
	clock core.Clock

	mu      sync.RWMutex
	entries map[core.SelectionKey]entry[T]
	group   singleflight.Group
}

// NewMemo creates a memo; a nil clock means the system clock
func NewMemo[T any](ttl time.Duration, clock core.Clock) *Memo[T] {
	if clock == nil {
		clock = core.SystemClock
	}
	return &Memo[T]{ttl: ttl, clock: clock, entries: make(map[core.SelectionKey]entry[T])}
}

// Get returns the cached value for key, computing it with fn on a miss.
// Concurrent misses on the same key run fn once.
func (m *Memo[T]) Get(key core.SelectionKey, fn func() (T, error)) (T, error) {
	if v, ok := m.lookup(key); ok {
		return v, nil
	}

	v, err, _ := m.group.Do(key.String(), func() (interface{}, error) {
		if v, ok := m.lookup(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.entries[key] = entry[T]{value: v, expires: m.clock().Add(m.ttl)}
		m.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (m *Memo[T]) lookup(key core.SelectionKey) (T, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || !m.clock().Before(e.expires) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Purge drops expired entries and returns how many were removed
func (m *Memo[T]) Purge() int {
	now := m.clock()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

// Clear drops every entry and returns how many there were
func (m *Memo[T]) Clear() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	m.entries = make(map[core.SelectionKey]entry[T])
	return n
}

// Len returns the number of cached entries, expired ones included
func (m *Memo[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
