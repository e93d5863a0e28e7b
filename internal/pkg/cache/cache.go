// Package cache is the in-process query cache the mutation engine and the
// realtime channel invalidate. Reads go through Get/Put; a mutation never
// writes a guessed post-mutation value here, it only marks regions stale so
// the next read refetches.
package cache

import (
	"sync"
)

// Region identifies a set of cached reads: a logical resource name plus an
// optional target id. An empty ID addresses every entry for the resource.
type Region struct {
	Resource string
	ID       string
}

// Key builds an id-qualified region.
func Key(resource, id string) Region {
	return Region{Resource: resource, ID: id}
}

// All builds a region covering every entry for a resource.
func All(resource string) Region {
	return Region{Resource: resource}
}

// Store is a concurrency-safe query cache with region invalidation.
type Store struct {
	mu      sync.RWMutex
	entries map[Region]interface{}
	gens    map[Region]uint64
}

// NewStore creates an empty cache
func NewStore() *Store {
	return &Store{
		entries: make(map[Region]interface{}),
		gens:    make(map[Region]uint64),
	}
}

// Put stores a fetched value under its region.
func (s *Store) Put(region Region, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[region] = value
}

// Get returns the cached value for a region, if any.
func (s *Store) Get(region Region) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[region]
	return v, ok
}

// Invalidate drops every entry the regions address and bumps their
// generation counters. Invalidating an id-qualified region also drops the
// unqualified listing for that resource; invalidating an unqualified region
// drops every entry for the resource. Repeating an invalidation is always
// safe.
func (s *Store) Invalidate(regions ...Region) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, region := range regions {
		s.gens[region]++

		if region.ID == "" {
			for key := range s.entries {
				if key.Resource == region.Resource {
					delete(s.entries, key)
				}
			}
			continue
		}

		delete(s.entries, region)
		delete(s.entries, Region{Resource: region.Resource})
	}
}

// Generation returns how many times a region has been invalidated. Zero for
// a region never invalidated.
func (s *Store) Generation(region Region) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gens[region]
}

// Len returns the number of live entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
