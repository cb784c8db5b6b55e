package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

func TestExtractChatID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid", "paddock://chats/c-123/messages", "c-123"},
		{"invalid prefix", "file://chats/c-123/messages", ""},
		{"missing suffix", "paddock://chats/c-123", ""},
		{"empty id", "paddock://chats//messages", ""},
		{"nested id", "paddock://chats/a/b/messages", ""},
		{"too short", "paddock://chats/messages", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractChatID(tt.uri))
		})
	}
}

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleChatsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil chat service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		result, err := server.handleChatsResource(ctx, makeReadResourceRequest("paddock://chats"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("lists chats", func(t *testing.T) {
		chat := &mockChatService{chats: []domain.Chat{{ID: "c-1", Title: "Who won at Spa"}}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Chat: chat})
		require.NoError(t, err)

		result, err := server.handleChatsResource(ctx, makeReadResourceRequest("paddock://chats"))
		require.NoError(t, err)

		var got []map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "c-1", got[0]["id"])
		assert.Equal(t, "Who won at Spa", got[0]["title"])
	})

	t.Run("propagates errors", func(t *testing.T) {
		chat := &mockChatService{err: errors.New("db down")}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Chat: chat})
		require.NoError(t, err)

		_, err = server.handleChatsResource(ctx, makeReadResourceRequest("paddock://chats"))
		assert.Error(t, err)
	})
}

func TestServer_handleMessagesResource(t *testing.T) {
	ctx := context.Background()
	chat := &mockChatService{messages: map[string][]domain.Message{
		"c-1": {
			{ID: 1, ChatID: "c-1", Role: domain.RoleUser, Content: "Who won at Spa in 1998?"},
			{ID: 2, ChatID: "c-1", Role: domain.RoleAssistant, Content: "Damon Hill."},
		},
	}}
	server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Chat: chat})
	require.NoError(t, err)

	t.Run("returns messages in order", func(t *testing.T) {
		result, err := server.handleMessagesResource(ctx, makeReadResourceRequest("paddock://chats/c-1/messages"))
		require.NoError(t, err)

		var got []map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "user", got[0]["role"])
		assert.Equal(t, "Damon Hill.", got[1]["content"])
	})

	t.Run("unknown chat", func(t *testing.T) {
		_, err := server.handleMessagesResource(ctx, makeReadResourceRequest("paddock://chats/nope/messages"))
		assert.Error(t, err)
	})

	t.Run("malformed uri", func(t *testing.T) {
		_, err := server.handleMessagesResource(ctx, makeReadResourceRequest("paddock://chats"))
		assert.Error(t, err)
	})
}
