package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateFileName is the TOML file holding runtime state.
const StateFileName = "state.toml"

// stateFile is the on-disk layout of StateFileName.
//
//	[chat]
//	last_processed = 42
type stateFile struct {
	Chat struct {
		LastProcessed int64 `toml:"last_processed"`
	} `toml:"chat"`
}

// StateStore keeps runtime state in a TOML file. Every change is written
// through, replacing the file in one rename.
type StateStore struct {
	mu    sync.RWMutex
	path  string
	state stateFile
}

// NewStateStore opens the state file in dir, creating dir if needed.
// If dir is empty, defaults to ~/.paddock. A missing file is an empty state.
func NewStateStore(dir string) (*StateStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".paddock")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	s := &StateStore{path: filepath.Join(dir, StateFileName)}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if err := toml.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return s, nil
}

// LastProcessed returns the chat loop cursor.
func (s *StateStore) LastProcessed() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Chat.LastProcessed
}

// SetLastProcessed stores the chat loop cursor. The in-memory value is left
// unchanged when the write fails.
func (s *StateStore) SetLastProcessed(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.Chat.LastProcessed = id
	if err := s.write(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// Path returns the state file path.
func (s *StateStore) Path() string {
	return s.path
}

// write replaces the state file. Callers hold mu.
func (s *StateStore) write(state stateFile) error {
	data, err := toml.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}
