// Package session persists generation snapshots to the local filesystem,
// one JSON file per session, written atomically so a crash never leaves a
// half-written snapshot behind.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/specsmith/specsmith/internal/errors"
	"github.com/specsmith/specsmith/internal/orchestrator"
)

// DefaultMaxAge is the staleness cutoff for restoring snapshots: anything
// older is reported stale rather than silently resumed.
const DefaultMaxAge = 24 * time.Hour

var (
	// ErrNotFound is returned when no snapshot exists for the session ID.
	ErrNotFound = errors.New("session: snapshot not found")
	// ErrSnapshotStale is returned by Load when the snapshot is older than
	// the store's staleness cutoff. The caller may still read it with
	// LoadAny.
	ErrSnapshotStale = errors.New("session: snapshot is stale")
)

// Info summarizes one stored session without loading the full snapshot.
type Info struct {
	ID      string    `json:"id"`
	SavedAt time.Time `json:"savedAt"`
	Rounds  int       `json:"rounds"`
	HasSpec bool      `json:"hasSpec"`
	Paused  bool      `json:"paused"`
}

// Store saves and restores orchestrator snapshots under a base directory.
// It is safe for concurrent use.
type Store struct {
	baseDir string
	maxAge  time.Duration
	now     func() time.Time
	mu      sync.RWMutex
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithMaxAge overrides the staleness cutoff. Zero disables the check.
func WithMaxAge(d time.Duration) StoreOption {
	return func(s *Store) { s.maxAge = d }
}

// WithStoreClock overrides the timestamp source (tests).
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a Store rooted at baseDir, creating the directory if it
// doesn't exist.
func NewStore(baseDir string, opts ...StoreOption) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	s := &Store{
		baseDir: baseDir,
		maxAge:  DefaultMaxAge,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save persists the snapshot under its session ID using an atomic write.
func (s *Store) Save(snap *orchestrator.Snapshot) error {
	if snap == nil {
		return errors.New("session: nil snapshot")
	}
	id := snap.SessionState.ID
	if id == "" {
		return errors.New("session: snapshot has no session ID")
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return atomicWriteFile(s.path(id), data, 0o644)
}

// Load reads the snapshot for the session ID. Snapshots older than the
// staleness cutoff return ErrSnapshotStale.
func (s *Store) Load(id string) (*orchestrator.Snapshot, error) {
	snap, err := s.LoadAny(id)
	if err != nil {
		return nil, err
	}
	if s.maxAge > 0 && s.now().Sub(snap.Timestamp) > s.maxAge {
		return nil, ErrSnapshotStale
	}
	return snap, nil
}

// LoadAny reads the snapshot regardless of age.
func (s *Store) LoadAny(id string) (*orchestrator.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap orchestrator.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes the stored snapshot for the session ID.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// List summarizes all stored sessions, newest first.
func (s *Store) List() ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var infos []Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		data, err := os.ReadFile(filepath.Join(s.baseDir, name))
		if err != nil {
			continue
		}
		var snap orchestrator.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			// Unreadable snapshots are skipped, not fatal.
			continue
		}
		infos = append(infos, Info{
			ID:      id,
			SavedAt: snap.Timestamp,
			Rounds:  len(snap.SessionState.Rounds),
			HasSpec: snap.SessionState.GeneratedSpec != "",
			Paused:  snap.SessionState.PendingResume != nil,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].SavedAt.After(infos[j].SavedAt)
	})
	return infos, nil
}

// Latest returns the most recently saved session ID, or ErrNotFound when
// the store is empty.
func (s *Store) Latest() (string, error) {
	infos, err := s.List()
	if err != nil {
		return "", err
	}
	if len(infos) == 0 {
		return "", ErrNotFound
	}
	return infos[0].ID, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// atomicWriteFile writes data to a temp file in the target directory and
// renames it into place so readers never observe a partial write.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}
