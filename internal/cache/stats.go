// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"sort"
	"time"
)

// Stats is a point-in-time summary of the cache, used by `mealctl cache
// stats`.
type Stats struct {
	Location string
	Entries  int
	Stale    int
	Bytes    int64
	Oldest   time.Time
	Newest   time.Time
}

// Stats summarizes the current snapshot.
func (s *Store) Stats(ctx context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Location: s.medium.Location()}

	doc, err := s.medium.Load(ctx)
	if err == nil {
		st.Bytes = int64(len(doc))
	}

	now := s.now()
	for _, entry := range s.load(ctx) {
		st.Entries++
		if entry.Stale(now, s.ttl) {
			st.Stale++
		}
		stored := entry.Stored()
		if st.Oldest.IsZero() || stored.Before(st.Oldest) {
			st.Oldest = stored
		}
		if stored.After(st.Newest) {
			st.Newest = stored
		}
	}

	return st
}

// Keys returns every cached key, fresh or stale, sorted.
func (s *Store) Keys(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load(ctx)
	keys := make([]string, 0, len(snap))
	for key := range snap {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Purge drops every entry, fresh or stale, leaving an empty document
// behind.
func (s *Store) Purge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, Snapshot{})
}
