package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for paddock resources.
	uriScheme = "paddock://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "chats",
		Name:        "chats",
		Description: "Conversations, most recent first",
		MIMEType:    "application/json",
	}, s.handleChatsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "chats/{chatId}/messages",
		Name:        "chat-messages",
		Description: "Messages of one conversation in order",
		MIMEType:    "application/json",
	}, s.handleMessagesResource)
}

// handleChatsResource lists every chat.
func (s *Server) handleChatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Chat == nil {
		return jsonResult(req.Params.URI, []any{})
	}

	chats, err := s.ports.Chat.ListChats(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}

	type chatInfo struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		CreatedAt time.Time `json:"created_at"`
	}
	infos := make([]chatInfo, len(chats))
	for i, c := range chats {
		infos[i] = chatInfo{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt}
	}

	return jsonResult(req.Params.URI, infos)
}

// handleMessagesResource returns the messages of one chat.
func (s *Server) handleMessagesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Chat == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// paddock://chats/{chatId}/messages
	chatID := extractChatID(req.Params.URI)
	if chatID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	msgs, err := s.ports.Chat.History(ctx, chatID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	type messageInfo struct {
		ID      int64  `json:"id"`
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	infos := make([]messageInfo, len(msgs))
	for i, m := range msgs {
		infos[i] = messageInfo{ID: m.ID, Role: string(m.Role), Content: m.Content}
	}

	return jsonResult(req.Params.URI, infos)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractChatID extracts the chat ID from a URI like paddock://chats/{chatId}/messages.
func extractChatID(uri string) string {
	const prefix = uriScheme + "chats/"
	const suffix = "/messages"

	if len(uri) < len(prefix)+len(suffix) || !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	id := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
