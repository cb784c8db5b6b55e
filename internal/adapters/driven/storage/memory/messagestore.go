package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// Ensure MessageStore implements the interface.
var _ driven.MessageStore = (*MessageStore)(nil)

// MessageStore is an in-memory implementation of driven.MessageStore.
type MessageStore struct {
	mu       sync.RWMutex
	chats    map[string]domain.Chat
	messages []domain.Message
	nextID   int64
}

// NewMessageStore creates a new in-memory message store.
func NewMessageStore() *MessageStore {
	return &MessageStore{
		chats:  make(map[string]domain.Chat),
		nextID: 1,
	}
}

// CreateChat stores a new chat.
func (s *MessageStore) CreateChat(_ context.Context, chat domain.Chat) error {
	if chat.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
	}
	s.chats[chat.ID] = chat
	return nil
}

// GetChat retrieves a chat by ID.
func (s *MessageStore) GetChat(_ context.Context, id string) (*domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chat, ok := s.chats[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chat, nil
}

// ListChats returns chats newest first.
func (s *MessageStore) ListChats(_ context.Context) ([]domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chat, 0, len(s.chats))
	for _, c := range s.chats {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Chat) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// AppendMessage stores msg and assigns its ID.
func (s *MessageStore) AppendMessage(_ context.Context, msg *domain.Message) error {
	if msg == nil || msg.ChatID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[msg.ChatID]; !ok {
		return domain.ErrNotFound
	}
	msg.ID = s.nextID
	s.nextID++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.messages = append(s.messages, *msg)
	return nil
}

// LatestMessage returns the highest-ID message with role.
func (s *MessageStore) LatestMessage(_ context.Context, role domain.Role) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == role {
			m := s.messages[i]
			return &m, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListMessages returns a chat's messages in ID order.
func (s *MessageStore) ListMessages(_ context.Context, chatID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Message
	for _, m := range s.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}
