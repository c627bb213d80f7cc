// Package history keeps an append-only local record of past reviews for the
// CLI, stored as a JSON file under the user's home directory.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codesage-ai/codesage/internal/core"
)

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("history entry not found")

// Entry is one recorded (input, output) pair. Entries are never mutated;
// the only way to remove one is to clear the whole collection.
type Entry struct {
	ID        string            `json:"id"`
	Input     string            `json:"input"`
	Output    core.ReviewOutput `json:"output"`
	Timestamp time.Time         `json:"timestamp"`
}

// Store records completed reviews. Append is the only mutation besides Clear.
type Store interface {
	Append(input string, output *core.ReviewOutput) (*Entry, error)
	List() ([]Entry, error)
	Get(id string) (*Entry, error)
	Clear() error
}

type fileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a Store backed by a JSON file. The file and its parent
// directory are created on first append.
func NewFileStore(path string) Store {
	return &fileStore{path: path}
}

// DefaultPath returns the history file location under the user's home
// directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".codesage", "history.json"), nil
}

func (s *fileStore) Append(input string, output *core.ReviewOutput) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Input:     input,
		Output:    *output,
		Timestamp: time.Now().UTC(),
	}
	entries = append(entries, entry)

	if err := s.save(entries); err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns all entries newest first.
func (s *fileStore) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}

	reversed := make([]Entry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}
	return reversed, nil
}

func (s *fileStore) Get(id string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *fileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// load reads the history file; a missing file is an empty history.
func (s *fileStore) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("history file is corrupt: %w", err)
	}
	return entries, nil
}

// save writes entries atomically via a temp file and rename, so a crash
// mid-write never corrupts existing history.
func (s *fileStore) save(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create history temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close history temp file: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}
