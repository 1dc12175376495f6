// Package store persists voice clips as immutable files in a single
// directory. The composite filename {name}_{authorHandle}_{mediaID}.ogg is
// the only on-disk metadata; an in-memory index keyed by normalized name is
// rebuilt from the directory on Open and maintained on Save, so lookups do
// not depend on filesystem enumeration order.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Store is a directory-backed voice clip store. Safe for concurrent use.
type Store struct {
	dir string

	mu    sync.RWMutex
	index map[string]Record // normalized name -> record
}

// Open creates dir if needed, scans it in lexical order and builds the name
// index. Files that don't parse as composite keys are skipped with a warning
// so one stray file can't take the bot down.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating voice directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading voice directory: %w", err)
	}

	s := &Store{dir: dir, index: make(map[string]Record, len(entries))}

	// os.ReadDir sorts by filename, so on name collisions between existing
	// files the lexically first one wins, deterministically.
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		rec, err := parseFilename(entry.Name())
		if err != nil {
			slog.Warn("skipping unrecognized file in voice directory", "file", entry.Name(), "error", err)
			continue
		}
		key := strings.ToLower(rec.Name)
		if _, exists := s.index[key]; exists {
			slog.Warn("duplicate voice name on disk, keeping first", "name", key, "file", entry.Name())
			continue
		}
		s.index[key] = rec
	}

	return s, nil
}

// Dir returns the backing directory path.
func (s *Store) Dir() string { return s.dir }

// Save writes payload under rec's composite key, write-once. It returns
// ErrNameTaken when the name is already indexed; any filesystem failure is
// returned wrapped and distinct from not-found.
func (s *Store) Save(rec Record, payload []byte) error {
	key := strings.ToLower(rec.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[key]; exists {
		return fmt.Errorf("saving voice %q: %w", rec.Name, ErrNameTaken)
	}

	path := filepath.Join(s.dir, encodeFilename(rec))

	// O_EXCL enforces write-once at the file level even if two saves race
	// on the exact same composite key.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating voice file: %w", err)
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writing voice file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("closing voice file: %w", err)
	}

	s.index[key] = rec
	return nil
}

// Find returns the record stored under name (case-insensitive), or
// ErrNotFound.
func (s *Store) Find(name string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.index[strings.ToLower(name)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Has reports whether a voice with the given name exists. Used by the
// naming policy's uniqueness check.
func (s *Store) Has(name string) bool {
	_, err := s.Find(name)
	return err == nil
}

// Payload reads back the stored bytes for a record. A record that is indexed
// but whose file has gone missing surfaces as ErrNotFound.
func (s *Store) Payload(rec Record) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, encodeFilename(rec)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading voice file: %w", err)
	}
	return data, nil
}

// List returns all stored (name, author) pairs sorted by name. Two calls
// with no intervening Save return the same listing.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.index))
	for name, rec := range s.index {
		entries = append(entries, Entry{Name: name, AuthorHandle: rec.AuthorHandle})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
