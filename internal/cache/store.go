// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the staleness window when none is configured.
const DefaultTTL = 24 * time.Hour

var (
	// ErrStorageUnavailable means the storage medium cannot be created or
	// accessed at all. The cache cannot function without it.
	ErrStorageUnavailable = errors.New("cache storage unavailable")

	// ErrNoData is the terminal GetOrFetch failure: no fresh value, the
	// fetch failed, and there is no stale value to fall back to. It wraps
	// the original fetch error.
	ErrNoData = errors.New("no data available")
)

// FetchFunc produces a fresh value for a key. The store treats it as a
// black box and imposes no timeout of its own; timeout policy belongs to
// the caller via ctx.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// Store is a durable TTL cache over a Medium. All mutations and medium
// reads are serialized by one in-process mutex; fetches for distinct keys
// still run concurrently. Cross-process concurrent writers are unsupported.
type Store struct {
	medium Medium
	ttl    time.Duration
	now    func() time.Time

	mu sync.Mutex
	sf singleflight.Group
}

// Option customizes a Store.
type Option func(*Store)

// WithTTL overrides the staleness window. Non-positive values fall back to
// DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMedium swaps the storage medium, e.g. for the S3 medium or a test
// double.
func WithMedium(m Medium) Option {
	return func(s *Store) { s.medium = m }
}

// WithClock injects the time source. Tests use this to cross the TTL
// boundary without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New builds a Store backed by a file at path, then applies options.
func New(path string, opts ...Option) *Store {
	s := &Store{
		medium: &FileMedium{Path: path},
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured staleness window.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Location describes where the backing medium lives.
func (s *Store) Location() string {
	return s.medium.Location()
}

// Init makes sure the medium exists and is seeded. Safe to call on every
// startup; a failure is fatal to all cache operations.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.medium.Ensure(ctx)
}

// load reads and decodes the snapshot. Missing or corrupt content is a
// cold start, never a hard failure -- cache data is expendable and a
// corrupt document gets overwritten by the next save. Callers must hold
// s.mu.
func (s *Store) load(ctx context.Context) Snapshot {
	doc, err := s.medium.Load(ctx)
	if err != nil {
		log.WithError(err).Warnf("unreadable cache at %s, treating as empty", s.medium.Location())
		return Snapshot{}
	}
	if len(doc) == 0 {
		return Snapshot{}
	}

	var snap Snapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		log.WithError(err).Warnf("corrupt cache at %s, treating as empty", s.medium.Location())
		return Snapshot{}
	}
	if snap == nil {
		snap = Snapshot{}
	}
	return snap
}

// save encodes and writes the whole snapshot. Callers must hold s.mu.
func (s *Store) save(ctx context.Context, snap Snapshot) error {
	doc, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache snapshot: %w", err)
	}
	return s.medium.Save(ctx, doc)
}

// Get returns the value for key if it exists and is still fresh. A stale
// entry is a miss but is not deleted here; eviction is a separate pass.
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.load(ctx)[key]
	if !ok || entry.Stale(s.now(), s.ttl) {
		return nil, false
	}
	return entry.Value, true
}

// GetStale returns the value for key regardless of age. This is the
// degraded fallback path used when a fetch fails.
func (s *Store) GetStale(ctx context.Context, key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.load(ctx)[key]
	if !ok {
		return nil, false
	}
	return entry.Value, true
}

// Put stores value under key with a fresh timestamp. The timestamp never
// moves backwards for a key, even if the wall clock does.
func (s *Store) Put(ctx context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load(ctx)
	entry := NewEntry(value, s.now())
	if prev, ok := snap[key]; ok && prev.StoredAt > entry.StoredAt {
		entry.StoredAt = prev.StoredAt
	}
	snap[key] = entry

	return s.save(ctx, snap)
}

// EvictExpired removes every entry whose age has reached the TTL and
// reports how many were removed. The snapshot is only rewritten when
// something was actually evicted. Intended as a one-shot vacuum at
// startup, not a per-access scan.
func (s *Store) EvictExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load(ctx)
	now := s.now()

	evicted := 0
	for key, entry := range snap {
		if entry.Stale(now, s.ttl) {
			delete(snap, key)
			evicted++
		}
	}
	if evicted == 0 {
		return 0, nil
	}

	if err := s.save(ctx, snap); err != nil {
		return 0, err
	}
	log.Debugf("evicted %d expired cache entries", evicted)
	return evicted, nil
}

// GetOrFetch is the single entry point commands use. Fresh hits return
// immediately. Otherwise fetch runs at most once per key at a time; a
// success is cached and returned, and a failure falls back to any stale
// value before giving up with ErrNoData. An empty-but-valid result (say,
// a search with no matches) is a real value and gets cached like any
// other.
func (s *Store) GetOrFetch(ctx context.Context, key string, fetch FetchFunc, force bool) (json.RawMessage, error) {
	if !force {
		if value, ok := s.Get(ctx, key); ok {
			return value, nil
		}
	}

	value, err, _ := s.sf.Do(key, func() (any, error) {
		// Re-check after winning the flight; a concurrent caller may have
		// refreshed this key while we waited.
		if !force {
			if value, ok := s.Get(ctx, key); ok {
				return value, nil
			}
		}

		fresh, err := fetch(ctx)
		if err != nil {
			if stale, ok := s.GetStale(ctx, key); ok {
				log.WithError(err).Warnf("fetch failed for %s, serving stale cache entry", key)
				return stale, nil
			}
			return nil, fmt.Errorf("%w for %q: %w", ErrNoData, key, err)
		}

		if err := s.Put(ctx, key, fresh); err != nil {
			// A write failure degrades durability, not availability.
			log.WithError(err).Warnf("failed to cache %s", key)
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(json.RawMessage), nil //nolint:forcetypeassert
}
