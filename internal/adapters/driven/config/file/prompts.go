package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed defaults
var defaults embed.FS

const defaultsDir = "defaults"

// PromptStore serves prompts from *.txt files in a directory the user may
// edit. Missing or unreadable files fall back to the built-in defaults.
//
// The directory is populated on first use, not in the constructor.
type PromptStore struct {
	dir string

	once    sync.Once
	initErr error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a prompt store over dir.
// If dir is empty, defaults to ~/.paddock/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".paddock", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Load returns the named prompt with surrounding whitespace trimmed.
func (s *PromptStore) Load(name string) (string, error) {
	s.once.Do(s.populate)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.read(name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached prompts so the next Load reads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// read loads a prompt from the directory, then from the built-in defaults.
func (s *PromptStore) read(name string) (string, error) {
	if s.initErr == nil {
		data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
		if err == nil {
			return strings.TrimSpace(string(data)), nil
		}
	}
	data, err := defaults.ReadFile(path.Join(defaultsDir, name+".txt"))
	if err != nil {
		if s.initErr != nil {
			return "", fmt.Errorf("load prompt %q: %w", name, s.initErr)
		}
		return "", fmt.Errorf("load prompt %q: %w", name, fs.ErrNotExist)
	}
	return strings.TrimSpace(string(data)), nil
}

// populate creates the directory and copies in every default the user does
// not already have. Existing files are never overwritten.
func (s *PromptStore) populate() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	entries, err := defaults.ReadDir(defaultsDir)
	if err != nil {
		s.initErr = err
		return
	}
	for _, e := range entries {
		target := filepath.Join(s.dir, e.Name())
		if _, err := os.Stat(target); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		data, err := defaults.ReadFile(path.Join(defaultsDir, e.Name()))
		if err != nil {
			s.initErr = err
			return
		}
		if err := os.WriteFile(target, data, 0600); err != nil {
			s.initErr = fmt.Errorf("write default %s: %w", e.Name(), err)
			return
		}
	}
}
