// Package jsonfile provides a JSON file-based store for all relay state.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/sunpark333/topicwala/internal/core/access"
	"github.com/sunpark333/topicwala/internal/core/route"
	"github.com/sunpark333/topicwala/internal/core/rules"
	"github.com/sunpark333/topicwala/internal/core/topic"
)

// StateFile is the root JSON structure stored on disk.
type StateFile struct {
	Config            route.Route                              `json:"config"`
	TopicDirectory    map[int64]map[topic.Label]topic.ThreadID `json:"topic_directory"`
	AuthRecords       AuthRecords                              `json:"auth_records"`
	SubstitutionRules rules.Set                                `json:"substitution_rules"`
}

// AuthRecords holds both kinds of authorization record.
type AuthRecords struct {
	Grants []access.Grant    `json:"grants"`
	Groups map[int64][]int64 `json:"groups"`
}

// Store implements the relay stores using a single JSON file. Every mutation
// rewrites the whole file before returning.
type Store struct {
	path string
	mu   sync.RWMutex
}

// New creates a new JSON file store at the given path.
func New(path string) *Store {
	return &Store{path: path}
}

// Close is a no-op; the file is not held open between calls.
func (s *Store) Close() error {
	return nil
}

// read loads the state under a shared lock.
func (s *Store) read(fn func(f *StateFile)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.withFileLock(syscall.LOCK_SH, func() error {
		file, err := s.load()
		if err != nil {
			return err
		}
		fn(&file)
		return nil
	})
}

// update loads the state under an exclusive lock, applies fn and saves the
// result unless fn returns an error.
func (s *Store) update(fn func(f *StateFile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withFileLock(syscall.LOCK_EX, func() error {
		file, err := s.load()
		if err != nil {
			return err
		}
		if err := fn(&file); err != nil {
			return err
		}
		return s.save(file)
	})
}

// lockPath returns the path to the lock file.
func (s *Store) lockPath() string {
	return s.path + ".lock"
}

// withFileLock acquires a file lock, executes fn, then releases the lock.
// The lock keeps a CLI invocation and a running bot from interleaving writes.
func (s *Store) withFileLock(lockType int, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := syscall.Flock(int(f.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck

	return fn()
}

// load reads the state file from disk.
// Returns an empty StateFile if the file doesn't exist.
func (s *Store) load() (StateFile, error) {
	file := StateFile{}

	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return StateFile{}, fmt.Errorf("read state file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &file); err != nil {
			return StateFile{}, fmt.Errorf("parse %s: %w", s.path, err)
		}
	}

	if file.TopicDirectory == nil {
		file.TopicDirectory = make(map[int64]map[topic.Label]topic.ThreadID)
	}
	if file.AuthRecords.Groups == nil {
		file.AuthRecords.Groups = make(map[int64][]int64)
	}

	return file, nil
}

// save writes the state file to disk atomically.
// Uses write-to-temp-then-rename to prevent corruption from interrupted writes.
func (s *Store) save(file StateFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp) // best effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
