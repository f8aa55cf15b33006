// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"context"
	"sync"
)

// Memory is an in-process Cache backed by a map. It is safe for
// concurrent use by all dispatch workers and never evicts.
//
// Entries are stored and returned by pointer. Workers hand ownership
// of an entry to the cache on Put and must not mutate it afterward,
// except through the revalidation header merge the executor performs
// on the entry attached to the request it currently owns.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemory constructs an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*Entry)}
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[key], nil
}

// Put implements Cache.
func (m *Memory) Put(_ context.Context, key string, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
