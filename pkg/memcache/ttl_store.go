// pkg/memcache/ttl_store.go
package mem

import (
	"sync"
	"time"
)

// Store is an in-memory map whose entries expire after a per-entry TTL.
type Store[V any] interface {
	Set(key string, value V, ttl time.Duration)

	// Get returns the value for key if present and not expired.
	Get(key string) (V, bool)

	// Touch pushes the expiry of a live entry to now+ttl.
	Touch(key string, ttl time.Duration) bool

	Delete(key string)

	// Sweep drops expired entries and returns their values.
	Sweep() []V

	Len() int
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type TTLStore[V any] struct {
	mu   sync.RWMutex
	data map[string]entry[V]
	now  func() time.Time
}

type Option[V any] func(*TTLStore[V])

// WithClock replaces time.Now, mostly for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(s *TTLStore[V]) { s.now = now }
}

func NewTTLStore[V any](opts ...Option[V]) *TTLStore[V] {
	s := &TTLStore[V]{
		data: make(map[string]entry[V]),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TTLStore[V]) Set(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry[V]{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
}

func (s *TTLStore[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || s.now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (s *TTLStore[V]) Touch(key string, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok || s.now().After(e.expiresAt) {
		return false
	}
	e.expiresAt = s.now().Add(ttl)
	s.data[key] = e
	return true
}

func (s *TTLStore[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

func (s *TTLStore[V]) Sweep() []V {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var expired []V
	for key, e := range s.data {
		if now.After(e.expiresAt) {
			expired = append(expired, e.value)
			delete(s.data, key)
		}
	}
	return expired
}

func (s *TTLStore[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
