package mcp

import (
	"context"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	hits      []domain.SearchHit
	err       error
	lastQuery string
	lastK     int
}

func (m *mockRetrievalService) Load(_ context.Context, _ bool) (*driving.LoadReport, error) {
	return &driving.LoadReport{}, m.err
}

func (m *mockRetrievalService) Search(_ context.Context, query string, k int) ([]domain.SearchHit, error) {
	m.lastQuery = query
	m.lastK = k
	return m.hits, m.err
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	chats    []domain.Chat
	messages map[string][]domain.Message
	answer   string
	err      error
}

func (m *mockChatService) Poll(_ context.Context) (bool, error) {
	return false, m.err
}

func (m *mockChatService) Ask(_ context.Context, chatID, _ string) (*domain.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	if chatID == "" {
		chatID = "new-chat"
	}
	return &domain.Message{ID: 2, ChatID: chatID, Role: domain.RoleAssistant, Content: m.answer}, nil
}

func (m *mockChatService) StartChat(_ context.Context, firstMessage string) (*domain.Chat, error) {
	return &domain.Chat{ID: "new-chat", Title: domain.ChatTitle(firstMessage)}, m.err
}

func (m *mockChatService) Enqueue(_ context.Context, chatID, text string) (*domain.Message, error) {
	return &domain.Message{ID: 1, ChatID: chatID, Role: domain.RoleUser, Content: text}, m.err
}

func (m *mockChatService) ListChats(_ context.Context) ([]domain.Chat, error) {
	return m.chats, m.err
}

func (m *mockChatService) History(_ context.Context, chatID string) ([]domain.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	msgs, ok := m.messages[chatID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return msgs, nil
}
