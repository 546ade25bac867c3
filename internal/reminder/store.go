package reminder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/notexe/reminderd/internal/logger"
)

// Store is the durable, thread-safe reminder collection. The backing file
// is a flat JSON array ordered by insertion; every operation is a complete
// load-mutate-persist cycle so that separate processes sharing the file see
// last-writer-wins semantics, and the mutex keeps in-process callers (the
// watcher's poll cycle and external commands) from interleaving on the same
// record.
type Store struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger
}

// NewStore binds a store to the given file path and performs the initial
// load so that a corrupt file is detected (and reset) at startup rather
// than mid-cycle.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	s := &Store{
		path: path,
		log:  logger.New("store"),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.loadLocked(); err != nil {
		return nil, err
	}

	return s, nil
}

// Path returns the durable file path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Add assigns a fresh ID if the reminder has none, normalizes timestamps
// to UTC, appends it and persists. It returns the stored reminder.
func (s *Store) Add(r Reminder) (Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r = r.normalize()

	all, err := s.loadLocked()
	if err != nil {
		return Reminder{}, err
	}
	for _, existing := range all {
		if existing.ID == r.ID {
			return Reminder{}, fmt.Errorf("reminder %s already exists", r.ID)
		}
	}

	all = append(all, r)
	if err := s.persistLocked(all); err != nil {
		return Reminder{}, err
	}

	return r, nil
}

// List returns a snapshot of all reminders in insertion order.
func (s *Store) List() ([]Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Remove deletes the reminders with the given IDs and returns how many
// were actually removed. Unknown IDs are ignored: the watcher may have
// delivered (and removed) them already, and the caller cannot know.
func (s *Store) Remove(ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadLocked()
	if err != nil {
		return 0, err
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := all[:0]
	for _, r := range all {
		if !drop[r.ID] {
			kept = append(kept, r)
		}
	}

	removed := len(all) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := s.persistLocked(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// RemoveAll clears the store.
func (s *Store) RemoveAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(nil)
}

// loadLocked reads the durable file. A missing file yields an empty
// collection. Corrupt content must never crash the process: the broken
// file is moved aside, a warning is logged, and the store resets to empty.
func (s *Store) loadLocked() ([]Reminder, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var all []Reminder
	if err := json.Unmarshal(data, &all); err != nil {
		corrupt := s.path + ".corrupt"
		s.log.Warn().
			Err(err).
			Str("moved_to", corrupt).
			Msg("Store file is corrupt, resetting to empty")
		if renameErr := os.Rename(s.path, corrupt); renameErr != nil {
			s.log.Warn().Err(renameErr).Msg("Could not move corrupt store file aside")
			os.Remove(s.path)
		}
		return nil, nil
	}

	for i := range all {
		all[i] = all[i].normalize()
	}
	return all, nil
}

// persistLocked writes the full collection atomically: marshal to a temp
// file in the same directory, then rename over the store file. Readers
// either see the prior durable state or the complete new one.
func (s *Store) persistLocked(all []Reminder) error {
	if all == nil {
		all = []Reminder{}
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reminders: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".reminders-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp store file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	return nil
}
