// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests cross the TTL boundary without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	path := filepath.Join(t.TempDir(), "cache.json")
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	s := New(path, opts...)
	require.NoError(t, s.Init(context.Background()))
	return s, clock
}

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("creates directory and seeds empty document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deep", "nested", "cache.json")
		s := New(path)
		require.NoError(t, s.Init(ctx))

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.JSONEq(t, "{}", string(b))

		// Idempotent.
		require.NoError(t, s.Init(ctx))
	})

	t.Run("uncreatable medium is fatal", func(t *testing.T) {
		// A regular file where the parent directory should be.
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

		s := New(filepath.Join(blocker, "sub", "cache.json"))
		err := s.Init(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})

	t.Run("does not clobber existing content", func(t *testing.T) {
		s, _ := newTestStore(t)
		require.NoError(t, s.Put(ctx, "keep", json.RawMessage(`1`)))
		require.NoError(t, s.Init(ctx))
		_, ok := s.Get(ctx, "keep")
		assert.True(t, ok)
	})
}

func TestGetPut(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, WithTTL(time.Second))

	t.Run("never written is absent", func(t *testing.T) {
		_, ok := s.Get(ctx, "nope")
		assert.False(t, ok)
		_, ok = s.GetStale(ctx, "nope")
		assert.False(t, ok)
	})

	value := json.RawMessage(`{"a":1}`)
	require.NoError(t, s.Put(ctx, "x", value))

	t.Run("fresh hit", func(t *testing.T) {
		clock.Advance(500 * time.Millisecond)
		got, ok := s.Get(ctx, "x")
		require.True(t, ok)
		assert.JSONEq(t, string(value), string(got))

		got, ok = s.GetStale(ctx, "x")
		require.True(t, ok)
		assert.JSONEq(t, string(value), string(got))
	})

	t.Run("stale is a miss for Get but not GetStale", func(t *testing.T) {
		clock.Advance(time.Second) // age 1500ms >= ttl
		_, ok := s.Get(ctx, "x")
		assert.False(t, ok)

		got, ok := s.GetStale(ctx, "x")
		require.True(t, ok)
		assert.JSONEq(t, string(value), string(got))
	})

	t.Run("stale read does not delete", func(t *testing.T) {
		assert.Contains(t, s.Keys(ctx), "x")
	})

	t.Run("age exactly TTL is stale", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "edge", json.RawMessage(`true`)))
		clock.Advance(time.Second)
		_, ok := s.Get(ctx, "edge")
		assert.False(t, ok)
	})
}

func TestPutMonotonicTimestamp(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	require.NoError(t, s.Put(ctx, "k", json.RawMessage(`1`)))
	first := s.Stats(ctx).Newest

	// Wall clock regresses; a later write must never appear older.
	clock.Advance(-time.Hour)
	require.NoError(t, s.Put(ctx, "k", json.RawMessage(`2`)))

	assert.False(t, s.Stats(ctx).Newest.Before(first))
	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	assert.JSONEq(t, `2`, string(got))
}

func TestEvictExpired(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, WithTTL(time.Second))

	require.NoError(t, s.Put(ctx, "old1", json.RawMessage(`1`)))
	require.NoError(t, s.Put(ctx, "old2", json.RawMessage(`2`)))
	clock.Advance(1500 * time.Millisecond)
	require.NoError(t, s.Put(ctx, "young", json.RawMessage(`3`)))

	n, err := s.EvictExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Survivor untouched, victims gone even for stale reads.
	got, ok := s.Get(ctx, "young")
	require.True(t, ok)
	assert.JSONEq(t, `3`, string(got))
	_, ok = s.GetStale(ctx, "old1")
	assert.False(t, ok)
	_, ok = s.GetStale(ctx, "old2")
	assert.False(t, ok)

	t.Run("second pass is a no-op without a rewrite", func(t *testing.T) {
		before, err := os.ReadFile(s.Location())
		require.NoError(t, err)

		n, err := s.EvictExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		after, err := os.ReadFile(s.Location())
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

// TestTTLScenario walks the concrete timeline from the design doc:
// put at t=0 with a 1000ms TTL, fresh at t=500, stale at t=1500,
// evicted thereafter.
func TestTTLScenario(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, WithTTL(1000*time.Millisecond))

	value := json.RawMessage(`{"a":1}`)
	require.NoError(t, s.Put(ctx, "x", value))

	clock.Advance(500 * time.Millisecond)
	got, ok := s.Get(ctx, "x")
	require.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(got))

	clock.Advance(1000 * time.Millisecond) // t=1500
	_, ok = s.Get(ctx, "x")
	assert.False(t, ok)
	got, ok = s.GetStale(ctx, "x")
	require.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(got))

	n, err := s.EvictExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	clock.Advance(100 * time.Millisecond) // t=1600
	_, ok = s.Get(ctx, "x")
	assert.False(t, ok)
	_, ok = s.GetStale(ctx, "x")
	assert.False(t, ok)
}

func TestCorruptSnapshot(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"half":`},
		{"wrong shape", `[1,2,3]`},
		{"empty file", ``},
		{"null document", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cache.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			s := New(path, WithClock(newFakeClock().Now))
			require.NoError(t, s.Init(ctx))

			// Behaves exactly like a cold start.
			_, ok := s.Get(ctx, "anything")
			assert.False(t, ok)
			assert.Empty(t, s.Keys(ctx))

			// The next save overwrites the corrupt content.
			require.NoError(t, s.Put(ctx, "k", json.RawMessage(`"v"`)))
			got, ok := s.Get(ctx, "k")
			require.True(t, ok)
			assert.JSONEq(t, `"v"`, string(got))
		})
	}
}

func TestGetOrFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh hit skips the fetch", func(t *testing.T) {
		s, _ := newTestStore(t)
		require.NoError(t, s.Put(ctx, "k", json.RawMessage(`"cached"`)))

		got, err := s.GetOrFetch(ctx, "k", func(context.Context) (json.RawMessage, error) {
			t.Fatal("fetch must not run on a fresh hit")
			return nil, nil
		}, false)
		require.NoError(t, err)
		assert.JSONEq(t, `"cached"`, string(got))
	})

	t.Run("miss fetches, caches, and refreshes on expiry", func(t *testing.T) {
		s, clock := newTestStore(t, WithTTL(time.Second))

		responses := []string{`"v1"`, `"v2"`}
		var calls int
		fetch := func(context.Context) (json.RawMessage, error) {
			calls++
			return json.RawMessage(responses[calls-1]), nil
		}

		got, err := s.GetOrFetch(ctx, "k", fetch, false)
		require.NoError(t, err)
		assert.JSONEq(t, `"v1"`, string(got))
		assert.Equal(t, 1, calls)

		firstStored := s.Stats(ctx).Newest

		clock.Advance(2 * time.Second)
		got, err = s.GetOrFetch(ctx, "k", fetch, false)
		require.NoError(t, err)
		assert.JSONEq(t, `"v2"`, string(got))
		assert.Equal(t, 2, calls)
		assert.True(t, s.Stats(ctx).Newest.After(firstStored))
	})

	t.Run("force bypasses a fresh entry", func(t *testing.T) {
		s, _ := newTestStore(t)
		require.NoError(t, s.Put(ctx, "k", json.RawMessage(`"old"`)))

		got, err := s.GetOrFetch(ctx, "k", func(context.Context) (json.RawMessage, error) {
			return json.RawMessage(`"new"`), nil
		}, true)
		require.NoError(t, err)
		assert.JSONEq(t, `"new"`, string(got))
	})

	t.Run("fetch failure falls back to stale", func(t *testing.T) {
		s, clock := newTestStore(t, WithTTL(time.Second))
		require.NoError(t, s.Put(ctx, "k", json.RawMessage(`"vOld"`)))
		clock.Advance(time.Minute)

		got, err := s.GetOrFetch(ctx, "k", func(context.Context) (json.RawMessage, error) {
			return nil, errors.New("remote down")
		}, false)
		require.NoError(t, err)
		assert.JSONEq(t, `"vOld"`, string(got))
	})

	t.Run("fetch failure with nothing cached is terminal", func(t *testing.T) {
		s, _ := newTestStore(t)

		boom := errors.New("remote down")
		_, err := s.GetOrFetch(ctx, "never-seen", func(context.Context) (json.RawMessage, error) {
			return nil, boom
		}, false)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoData)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty collection is a value, not a miss", func(t *testing.T) {
		s, _ := newTestStore(t)

		var calls int
		fetch := func(context.Context) (json.RawMessage, error) {
			calls++
			return json.RawMessage(`[]`), nil
		}

		got, err := s.GetOrFetch(ctx, "empty", fetch, false)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(got))

		// Second call is served from cache.
		got, err = s.GetOrFetch(ctx, "empty", fetch, false)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(got))
		assert.Equal(t, 1, calls)
	})
}

func TestGetOrFetchSingleflight(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	var fetches atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (json.RawMessage, error) {
		fetches.Add(1)
		<-release
		return json.RawMessage(`"shared"`), nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]json.RawMessage, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.GetOrFetch(ctx, "hot", fetch, false)
		}(i)
	}

	// Give the goroutines time to pile onto the same flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), fetches.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.JSONEq(t, `"shared"`, string(results[i]))
	}
}

func TestConcurrentPutsAreNotLost(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			assert.NoError(t, s.Put(ctx, key, json.RawMessage(`1`)))
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Keys(ctx), writers)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t, WithTTL(time.Second))

	st := s.Stats(ctx)
	assert.Equal(t, 0, st.Entries)
	assert.Equal(t, s.Location(), st.Location)

	require.NoError(t, s.Put(ctx, "a", json.RawMessage(`1`)))
	clock.Advance(2 * time.Second)
	require.NoError(t, s.Put(ctx, "b", json.RawMessage(`2`)))

	st = s.Stats(ctx)
	assert.Equal(t, 2, st.Entries)
	assert.Equal(t, 1, st.Stale)
	assert.Greater(t, st.Bytes, int64(0))
	assert.True(t, st.Oldest.Before(st.Newest))
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.Put(ctx, "a", json.RawMessage(`1`)))
	require.NoError(t, s.Put(ctx, "b", json.RawMessage(`2`)))
	require.NoError(t, s.Purge(ctx))

	assert.Empty(t, s.Keys(ctx))
	b, err := os.ReadFile(s.Location())
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(b))
}

func TestSnapshotWireFormat(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	require.NoError(t, s.Put(ctx, "k", json.RawMessage(`{"nested":{"deep":true}}`)))

	b, err := os.ReadFile(s.Location())
	require.NoError(t, err)

	var raw map[string]struct {
		StoredAt int64           `json:"storedAt"`
		Value    json.RawMessage `json:"value"`
	}
	require.NoError(t, json.Unmarshal(b, &raw))
	require.Contains(t, raw, "k")
	assert.Equal(t, clock.Now().UnixMilli(), raw["k"].StoredAt)
	assert.JSONEq(t, `{"nested":{"deep":true}}`, string(raw["k"].Value))
}
