package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
	"github.com/custodia-labs/paddock/internal/logger"
	"github.com/custodia-labs/paddock/internal/retry"
)

// Ensure ChatService implements the interface.
var (
	_ driving.ChatService     = (*ChatService)(nil)
	_ driven.PromptStoreAware = (*ChatService)(nil)
)

// DefaultSystemPrompt frames every conversation.
const DefaultSystemPrompt = "You are an assistant for Formula 1 history. " +
	"Answer using the context below when it is relevant. " +
	"If the context does not contain the answer, say so rather than guessing."

// ChatConfig tunes the conversational loop.
type ChatConfig struct {
	// TopK is how many records are retrieved as context.
	TopK int

	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// DefaultChatConfig returns the standard chat settings.
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		TopK:         4,
		SystemPrompt: DefaultSystemPrompt,
		Temperature:  0,
	}
}

// ChatService answers user messages with retrieved context.
type ChatService struct {
	messages  driven.MessageStore
	retriever driving.RetrievalService
	llm       driven.LLMService
	state     driven.StateStore
	prompts   driven.PromptStore
	cfg       ChatConfig
	retry     *retry.Config
	log       *zap.Logger

	mu            sync.Mutex
	lastProcessed int64
}

// NewChatService creates a chat service.
// The retriever is optional - without it answers carry no context.
// The state store is optional - without it the processed marker lives in memory.
func NewChatService(
	messages driven.MessageStore,
	retriever driving.RetrievalService,
	llm driven.LLMService,
	state driven.StateStore,
	cfg ChatConfig,
) *ChatService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultChatConfig().TopK
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	s := &ChatService{
		messages:  messages,
		retriever: retriever,
		llm:       llm,
		state:     state,
		cfg:       cfg,
		retry:     retry.DefaultConfig(),
		log:       logger.Named("chat"),
	}
	if state != nil {
		s.lastProcessed = state.LastProcessed()
	}
	return s
}

// Poll runs one cycle: Idle -> FetchLatestMessage -> (NoNewMessage -> Idle) |
// (NewUserMessage -> Retrieve -> Generate -> Persist -> Idle).
func (s *ChatService) Poll(ctx context.Context) (bool, error) {
	if s.llm == nil {
		return false, domain.ErrLLMUnavailable
	}

	msg, err := s.claimLatest(ctx)
	if err != nil || msg == nil {
		return false, err
	}

	if domain.IsStopMessage(msg.Content) {
		s.log.Info("stop message received", zap.Int64("message", msg.ID), zap.String("chat", msg.ChatID))
		return false, domain.ErrStopRequested
	}

	if _, err := s.answer(ctx, msg); err != nil {
		s.log.Error("message not answered", zap.Int64("message", msg.ID), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// claimLatest returns the newest user message if it has not been processed
// yet, marking it processed. Returns nil when there is nothing new.
func (s *ChatService) claimLatest(ctx context.Context) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := s.messages.LatestMessage(ctx, domain.RoleUser)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch latest message: %w", err)
	}
	if msg.ID == s.lastProcessed {
		return nil, nil
	}
	s.markProcessed(msg.ID)
	return msg, nil
}

// markProcessed records id as answered. Callers hold mu.
func (s *ChatService) markProcessed(id int64) {
	s.lastProcessed = id
	if s.state == nil {
		return
	}
	if err := s.state.SetLastProcessed(id); err != nil {
		s.log.Warn("processed marker not persisted", zap.Int64("message", id), zap.Error(err))
	}
}

// Ask appends a user message and answers it synchronously. An unknown chat
// id creates the chat; an empty one starts a new chat.
func (s *ChatService) Ask(ctx context.Context, chatID, text string) (*domain.Message, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}

	chatID, err := s.ensureChat(ctx, chatID, text)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{ChatID: chatID, Role: domain.RoleUser, Content: text}
	s.mu.Lock()
	err = s.messages.AppendMessage(ctx, msg)
	if err == nil {
		s.markProcessed(msg.ID)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	return s.answer(ctx, msg)
}

func (s *ChatService) ensureChat(ctx context.Context, chatID, firstMessage string) (string, error) {
	if chatID == "" {
		chat, err := s.StartChat(ctx, firstMessage)
		if err != nil {
			return "", err
		}
		return chat.ID, nil
	}
	_, err := s.messages.GetChat(ctx, chatID)
	if err == nil {
		return chatID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("get chat: %w", err)
	}
	chat := domain.Chat{ID: chatID, Title: domain.ChatTitle(firstMessage)}
	if err := s.messages.CreateChat(ctx, chat); err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}
	return chatID, nil
}

// answer retrieves context, generates a reply and persists it.
func (s *ChatService) answer(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	history, err := s.messages.ListMessages(ctx, msg.ChatID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	prompt := s.buildPrompt(ctx, msg, history)
	reply, err := retry.DoWithResult(ctx, s.retry, func() (string, error) {
		return s.llm.Chat(ctx, prompt, driven.ChatOptions{
			MaxTokens:   s.cfg.MaxTokens,
			Temperature: s.cfg.Temperature,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	answer := &domain.Message{ChatID: msg.ChatID, Role: domain.RoleAssistant, Content: strings.TrimSpace(reply)}
	if err := s.messages.AppendMessage(ctx, answer); err != nil {
		return nil, fmt.Errorf("persist answer: %w", err)
	}
	s.log.Info("message answered", zap.Int64("message", msg.ID), zap.Int64("answer", answer.ID))
	return answer, nil
}

// buildPrompt assembles system prompt with context, the prior conversation
// and the new user message. History is passed in full.
func (s *ChatService) buildPrompt(ctx context.Context, msg *domain.Message, history []domain.Message) []driven.ChatMessage {
	system := s.systemPrompt()
	if contextText := s.retrieve(ctx, msg.Content); contextText != "" {
		system += "\n\nContext:\n" + contextText
	}

	prompt := make([]driven.ChatMessage, 0, len(history)+2)
	prompt = append(prompt, driven.ChatMessage{Role: string(domain.RoleSystem), Content: system})
	for _, m := range history {
		if m.ID >= msg.ID || m.Role == domain.RoleSystem {
			continue
		}
		prompt = append(prompt, driven.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	return append(prompt, driven.ChatMessage{Role: string(domain.RoleUser), Content: msg.Content})
}

// SetPromptStore lets a user-edited system prompt replace the configured one.
func (s *ChatService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

func (s *ChatService) systemPrompt() string {
	if s.prompts == nil {
		return s.cfg.SystemPrompt
	}
	prompt, err := s.prompts.Load(driven.PromptChatSystem)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return s.cfg.SystemPrompt
	}
	return prompt
}

// retrieve returns the top hits joined one per line, or "" when retrieval
// is unavailable or fails.
func (s *ChatService) retrieve(ctx context.Context, query string) string {
	if s.retriever == nil {
		return ""
	}
	hits, err := s.retriever.Search(ctx, query, s.cfg.TopK)
	if err != nil {
		s.log.Warn("retrieval failed, answering without context", zap.Error(err))
		return ""
	}
	lines := make([]string, len(hits))
	for i, h := range hits {
		lines[i] = "- " + h.Text
	}
	return strings.Join(lines, "\n")
}

// StartChat creates a chat titled from its first message.
func (s *ChatService) StartChat(ctx context.Context, firstMessage string) (*domain.Chat, error) {
	chat := domain.Chat{ID: uuid.NewString(), Title: domain.ChatTitle(firstMessage)}
	if err := s.messages.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return s.messages.GetChat(ctx, chat.ID)
}

// Enqueue appends a user message for the polling loop to answer.
func (s *ChatService) Enqueue(ctx context.Context, chatID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidInput)
	}
	if _, err := s.messages.GetChat(ctx, chatID); err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	msg := &domain.Message{ChatID: chatID, Role: domain.RoleUser, Content: text}
	if err := s.messages.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

// ListChats returns chats, newest first.
func (s *ChatService) ListChats(ctx context.Context) ([]domain.Chat, error) {
	return s.messages.ListChats(ctx)
}

// History returns a chat's messages in order.
func (s *ChatService) History(ctx context.Context, chatID string) ([]domain.Message, error) {
	if _, err := s.messages.GetChat(ctx, chatID); err != nil {
		return nil, err
	}
	return s.messages.ListMessages(ctx, chatID)
}
