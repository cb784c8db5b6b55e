package driving

import (
	"context"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// ChatService answers questions about racing history.
type ChatService interface {
	// Poll runs one cycle of the conversational loop: fetch the latest user
	// message and answer it unless it was already processed. Returns whether
	// a message was answered, or domain.ErrStopRequested on a stop message.
	Poll(ctx context.Context) (bool, error)

	// Ask appends a user message to a chat and answers it synchronously.
	Ask(ctx context.Context, chatID, text string) (*domain.Message, error)

	// StartChat creates a chat titled from its first message.
	StartChat(ctx context.Context, firstMessage string) (*domain.Chat, error)

	// Enqueue appends a user message without answering it; the polling
	// loop picks it up.
	Enqueue(ctx context.Context, chatID, text string) (*domain.Message, error)

	// ListChats returns chats, newest first.
	ListChats(ctx context.Context) ([]domain.Chat, error)

	// History returns a chat's messages in order.
	History(ctx context.Context, chatID string) ([]domain.Message, error)
}
