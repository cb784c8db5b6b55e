package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// messageStore implements driven.MessageStore.
type messageStore struct {
	pool *pgxpool.Pool
}

var _ driven.MessageStore = (*messageStore)(nil)

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
	_, err := s.pool.Exec(ctx, "INSERT INTO chats (id, title, created_at) VALUES ($1, $2, $3)",
		chat.ID, chat.Title, chat.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

func (s *messageStore) GetChat(ctx context.Context, id string) (*domain.Chat, error) {
	var chat domain.Chat
	err := s.pool.QueryRow(ctx, "SELECT id, title, created_at FROM chats WHERE id = $1", id).
		Scan(&chat.ID, &chat.Title, &chat.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &chat, nil
}

func (s *messageStore) ListChats(ctx context.Context) ([]domain.Chat, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, title, created_at FROM chats ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Chat, error) {
		var c domain.Chat
		err := row.Scan(&c.ID, &c.Title, &c.CreatedAt)
		return c, err
	})
}

func (s *messageStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	if msg == nil || msg.ChatID == "" {
		return domain.ErrInvalidInput
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (chat_id, role, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, msg.ChatID, string(msg.Role), msg.Content, msg.CreatedAt).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

func (s *messageStore) LatestMessage(ctx context.Context, role domain.Role) (*domain.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, chat_id, role, content, created_at
		FROM messages WHERE role = $1
		ORDER BY id DESC LIMIT 1
	`, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to query latest message: %w", err)
	}
	msg, err := pgx.CollectExactlyOneRow(rows, scanMessage)
	if err != nil {
		return nil, notFound(err)
	}
	return &msg, nil
}

func (s *messageStore) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, chat_id, role, content, created_at
		FROM messages WHERE chat_id = $1
		ORDER BY id
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	return pgx.CollectRows(rows, scanMessage)
}

func scanMessage(row pgx.CollectableRow) (domain.Message, error) {
	var m domain.Message
	var role string
	err := row.Scan(&m.ID, &m.ChatID, &role, &m.Content, &m.CreatedAt)
	m.Role = domain.Role(role)
	return m, err
}
