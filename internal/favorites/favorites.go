// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package favorites keeps the user's saved recipes as a single JSON array
// on disk. Same whole-document, temp-then-rename discipline as the cache,
// just without any expiry.
package favorites

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/apex/log"
)

// Favorite is one saved recipe.
type Favorite struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	AddedAt int64  `json:"addedAt"`
}

// Added returns the instant the favorite was saved.
func (f Favorite) Added() time.Time {
	return time.UnixMilli(f.AddedAt)
}

// Store is the durable favorites list. Mutations are serialized in
// process; cross-process writers are unsupported, same as the cache.
type Store struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// List returns every favorite in the order they were added. A missing or
// unreadable file is an empty list, not an error.
func (s *Store) List() []Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add appends a favorite unless its ID is already present. Reports
// whether anything changed.
func (s *Store) Add(fav Favorite) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favs := s.load()
	for _, f := range favs {
		if f.ID == fav.ID {
			return false, nil
		}
	}

	fav.AddedAt = s.now().UnixMilli()
	favs = append(favs, fav)
	if err := s.save(favs); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the favorite with the given ID, reporting whether it was
// present.
func (s *Store) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favs := s.load()
	kept := favs[:0]
	for _, f := range favs {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(favs) {
		return false, nil
	}

	if err := s.save(kept); err != nil {
		return false, err
	}
	return true, nil
}

// Contains reports whether an ID is saved.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.load() {
		if f.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) load() []Favorite {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warnf("unreadable favorites at %s, treating as empty", s.path)
		}
		return nil
	}

	var favs []Favorite
	if err := json.Unmarshal(b, &favs); err != nil {
		log.WithError(err).Warnf("corrupt favorites at %s, treating as empty", s.path)
		return nil
	}
	return favs
}

func (s *Store) save(favs []Favorite) error {
	if favs == nil {
		favs = []Favorite{}
	}
	doc, err := json.MarshalIndent(favs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create favorites directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, doc, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write favorites: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace favorites: %w", err)
	}
	return nil
}
