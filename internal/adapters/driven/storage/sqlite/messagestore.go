package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// messageStore implements driven.MessageStore.
type messageStore struct {
	store *Store
}

var _ driven.MessageStore = (*messageStore)(nil)

// CreateChat stores a new chat.
func (s *messageStore) CreateChat(ctx context.Context, chat domain.Chat) error {
	if chat.ID == "" {
		return fmt.Errorf("%w: chat without id", domain.ErrInvalidInput)
	}
	if chat.Title == "" {
		chat.Title = domain.DefaultChatTitle
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now()
	}
	_, err := s.store.db.ExecContext(ctx,
		"INSERT INTO chats (id, title, created_at) VALUES (?, ?, ?)",
		chat.ID, chat.Title, formatTime(chat.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving chat: %w", err)
	}
	return nil
}

// GetChat retrieves a chat by ID.
func (s *messageStore) GetChat(ctx context.Context, id string) (*domain.Chat, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT id, title, created_at FROM chats WHERE id = ?", id)
	chat, err := scanChat(row)
	if err != nil {
		return nil, notFound(err)
	}
	return &chat, nil
}

// ListChats returns chats, newest first.
func (s *messageStore) ListChats(ctx context.Context) ([]domain.Chat, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, title, created_at FROM chats ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("querying chats: %w", err)
	}
	return collect(rows, "chats", scanChat)
}

// AppendMessage stores a message and sets its ID and CreatedAt.
func (s *messageStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	if msg == nil || msg.ChatID == "" {
		return domain.ErrInvalidInput
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	res, err := s.store.db.ExecContext(ctx,
		"INSERT INTO messages (chat_id, role, content, created_at) VALUES (?, ?, ?, ?)",
		msg.ChatID, string(msg.Role), msg.Content, formatTime(msg.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading message id: %w", err)
	}
	msg.ID = id
	return nil
}

// LatestMessage returns the newest message with role across all chats.
func (s *messageStore) LatestMessage(ctx context.Context, role domain.Role) (*domain.Message, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, chat_id, role, content, created_at
		FROM messages WHERE role = ?
		ORDER BY id DESC LIMIT 1
	`, string(role))
	msg, err := scanMessage(row)
	if err != nil {
		return nil, notFound(err)
	}
	return &msg, nil
}

// ListMessages returns a chat's messages ordered by ID.
func (s *messageStore) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, chat_id, role, content, created_at
		FROM messages WHERE chat_id = ?
		ORDER BY id
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	return collect(rows, "messages", scanMessage)
}

func scanChat(r rowScanner) (domain.Chat, error) {
	var chat domain.Chat
	var createdAt string
	if err := r.Scan(&chat.ID, &chat.Title, &createdAt); err != nil {
		return chat, err
	}
	chat.CreatedAt = parseTime(createdAt)
	return chat, nil
}

func scanMessage(r rowScanner) (domain.Message, error) {
	var msg domain.Message
	var role, createdAt string
	if err := r.Scan(&msg.ID, &msg.ChatID, &role, &msg.Content, &createdAt); err != nil {
		return msg, err
	}
	msg.Role = domain.Role(role)
	msg.CreatedAt = parseTime(createdAt)
	return msg, nil
}
