// Package cache provides a typed in-memory store on top of
// patrickmn/go-cache. It backs the eligibility baseline, where entries live
// until they are replaced or cleared.
package cache

import (
	gocache "github.com/patrickmn/go-cache"
)

// Store is a string-keyed cache of V values.
type Store[V any] struct {
	store *gocache.Cache
}

// New creates a store whose entries never expire. No janitor goroutine is
// started.
func New[V any]() *Store[V] {
	return &Store[V]{store: gocache.New(gocache.NoExpiration, 0)}
}

// Get retrieves a value from the store.
func (s *Store[V]) Get(key string) (V, bool) {
	var zero V
	raw, ok := s.store.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		return zero, false
	}
	return v, true
}

// Set stores a value, replacing any previous one.
func (s *Store[V]) Set(key string, value V) {
	s.store.Set(key, value, gocache.NoExpiration)
}

// Delete removes a value from the store.
func (s *Store[V]) Delete(key string) {
	s.store.Delete(key)
}

// Clear removes all items from the store.
func (s *Store[V]) Clear() {
	s.store.Flush()
}

// ItemCount returns the number of items in the store.
func (s *Store[V]) ItemCount() int {
	return s.store.ItemCount()
}

// Keys returns the keys of all items.
func (s *Store[V]) Keys() []string {
	items := s.store.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	return keys
}
