// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// emptyDocument is what a freshly seeded medium contains.
const emptyDocument = "{}"

// Medium is the durable home of a cache snapshot. It deals in raw bytes;
// the Store owns the JSON shape. A Load of (nil, nil) means the medium is
// present but holds nothing yet.
type Medium interface {
	// Ensure guarantees the medium exists and holds at least an empty
	// document. Idempotent. A failure here is fatal to the cache.
	Ensure(ctx context.Context) error
	// Load reads the full document. Missing content is (nil, nil), not an
	// error.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the full document.
	Save(ctx context.Context, doc []byte) error
	// Location describes where the medium lives, for logs and stats.
	Location() string
}

// FileMedium stores the snapshot as a single file, created on first use.
type FileMedium struct {
	Path string
}

func (m *FileMedium) Ensure(_ context.Context) error {
	if err := os.MkdirAll(filepath.Dir(m.Path), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("%w: creating cache directory: %v", ErrStorageUnavailable, err)
	}
	if _, err := os.Stat(m.Path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := os.WriteFile(m.Path, []byte(emptyDocument), os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("%w: seeding cache file: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (m *FileMedium) Load(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(m.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return b, nil
}

// Save writes to a temp file in the same directory and renames it into
// place, so an interrupted write never leaves a torn document behind.
func (m *FileMedium) Save(_ context.Context, doc []byte) error {
	tmp := m.Path + ".tmp"
	if err := os.WriteFile(tmp, doc, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp, m.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

func (m *FileMedium) Location() string {
	return m.Path
}
