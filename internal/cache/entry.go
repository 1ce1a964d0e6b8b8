// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package cache

import (
	"encoding/json"
	"time"
)

// Entry is a single cached value plus the instant it was last stored.
// StoredAt is milliseconds since the Unix epoch so the on-disk document
// stays readable and language-neutral.
type Entry struct {
	StoredAt int64           `json:"storedAt"`
	Value    json.RawMessage `json:"value"`
}

// Snapshot is the entire cache document, keyed by clear-text key.
type Snapshot map[string]Entry

// NewEntry stamps value with the given instant.
func NewEntry(value json.RawMessage, now time.Time) Entry {
	return Entry{
		StoredAt: now.UnixMilli(),
		Value:    value,
	}
}

// Stored returns the instant the entry was written.
func (e Entry) Stored() time.Time {
	return time.UnixMilli(e.StoredAt)
}

// Age returns how long ago the entry was written, relative to now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.Stored())
}

// Stale reports whether the entry has outlived ttl. A stale entry is still
// physically present until an eviction pass removes it.
func (e Entry) Stale(now time.Time, ttl time.Duration) bool {
	return e.Age(now) >= ttl
}
