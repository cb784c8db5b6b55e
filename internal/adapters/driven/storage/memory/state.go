package memory

import (
	"sync/atomic"

	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore keeps runtime state in memory only.
type StateStore struct {
	lastProcessed atomic.Int64
}

// NewStateStore creates an empty in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{}
}

// LastProcessed returns the chat loop cursor.
func (s *StateStore) LastProcessed() int64 {
	return s.lastProcessed.Load()
}

// SetLastProcessed stores the chat loop cursor.
func (s *StateStore) SetLastProcessed(id int64) error {
	s.lastProcessed.Store(id)
	return nil
}

// Path returns ":memory:".
func (s *StateStore) Path() string {
	return ":memory:"
}
