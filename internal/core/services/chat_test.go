package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

type chatFixture struct {
	messages  *memory.MessageStore
	state     *memory.StateStore
	llm       *mockLLM
	retriever *mockRetriever
	svc       *ChatService
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		messages:  memory.NewMessageStore(),
		state:     memory.NewStateStore(),
		llm:       &mockLLM{},
		retriever: &mockRetriever{},
	}
	f.svc = NewChatService(f.messages, f.retriever, f.llm, f.state, DefaultChatConfig())
	return f
}

func TestPoll_NothingToDo(t *testing.T) {
	f := newChatFixture()
	worked, err := f.svc.Poll(context.Background())
	require.NoError(t, err)
	assert.False(t, worked)
	assert.Zero(t, f.llm.callCount())
}

func TestPoll_AnswersEachMessageOnce(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture()
	chat, err := f.svc.StartChat(ctx, "Who won at Monza in 2020?")
	require.NoError(t, err)
	_, err = f.svc.Enqueue(ctx, chat.ID, "Who won at Monza in 2020?")
	require.NoError(t, err)

	worked, err := f.svc.Poll(ctx)
	require.NoError(t, err)
	assert.True(t, worked)

	worked, err = f.svc.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, worked)
	assert.Equal(t, 1, f.llm.callCount())

	history, err := f.svc.History(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
	assert.Equal(t, "answer to: Who won at Monza in 2020?", history[1].Content)
}

func TestPoll_ProcessedMarkerSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture()
	chat, err := f.svc.StartChat(ctx, "hello")
	require.NoError(t, err)
	_, err = f.svc.Enqueue(ctx, chat.ID, "hello")
	require.NoError(t, err)
	_, err = f.svc.Poll(ctx)
	require.NoError(t, err)

	restarted := NewChatService(f.messages, f.retriever, f.llm, f.state, DefaultChatConfig())
	worked, err := restarted.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, worked)
	assert.Equal(t, 1, f.llm.callCount())
}

func TestPoll_StopMessage(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture()
	chat, err := f.svc.StartChat(ctx, "bye")
	require.NoError(t, err)
	_, err = f.svc.Enqueue(ctx, chat.ID, "  Bye ")
	require.NoError(t, err)

	_, err = f.svc.Poll(ctx)
	assert.ErrorIs(t, err, domain.ErrStopRequested)
	assert.Zero(t, f.llm.callCount())

	worked, err := f.svc.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, worked)
}

func TestPoll_GenerationFailureIsNotRetried(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture()
	f.llm.err = errors.New("prompt rejected")
	chat, err := f.svc.StartChat(ctx, "q")
	require.NoError(t, err)
	_, err = f.svc.Enqueue(ctx, chat.ID, "q")
	require.NoError(t, err)

	worked, err := f.svc.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, worked)

	worked, err = f.svc.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, worked)
	assert.Equal(t, 1, f.llm.callCount())
}

func TestPoll_WithoutLLM(t *testing.T) {
	svc := NewChatService(memory.NewMessageStore(), nil, nil, nil, DefaultChatConfig())
	_, err := svc.Poll(context.Background())
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAsk_PromptCarriesContextAndHistory(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture()
	f.retriever.hits = []domain.SearchHit{
		{EntityID: "hamilton/2020", Kind: domain.KindDriver, Text: "Lewis Hamilton is a British driver."},
	}

	first, err := f.svc.Ask(ctx, "", "Who is Hamilton?")
	require.NoError(t, err)
	_, err = f.svc.Ask(ctx, first.ChatID, "How many wins?")
	require.NoError(t, err)

	prompt := f.llm.lastPrompt()
	require.Len(t, prompt, 4)
	assert.Equal(t, string(domain.RoleSystem), prompt[0].Role)
	assert.Contains(t, prompt[0].Content, DefaultSystemPrompt)
	assert.Contains(t, prompt[0].Content, "Context:\n- Lewis Hamilton is a British driver.")
	assert.Equal(t, []driven.ChatMessage{
		{Role: "user", Content: "Who is Hamilton?"},
		{Role: "assistant", Content: "answer to: Who is Hamilton?"},
		{Role: "user", Content: "How many wins?"},
	}, prompt[1:])
	assert.Equal(t, []string{"Who is Hamilton?", "How many wins?"}, f.retriever.queries)
	assert.Zero(t, f.llm.opts[0].Temperature)

	chats, err := f.svc.ListChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "Who is Hamilton?", chats[0].Title)

	// Ask marks its own message processed so the poller skips it.
	worked, err := f.svc.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, worked)
}

func TestAsk_RetrievalFailureStillAnswers(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture()
	f.retriever.err = domain.ErrVectorIndexUnavailable

	reply, err := f.svc.Ask(ctx, "", "Who won in 1950?")
	require.NoError(t, err)
	assert.Equal(t, "answer to: Who won in 1950?", reply.Content)
	assert.NotContains(t, f.llm.lastPrompt()[0].Content, "Context:")
}

func TestAsk_CreatesUnknownChat(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture()

	reply, err := f.svc.Ask(ctx, "pit-wall", "Fastest lap at Spa ever recorded please")
	require.NoError(t, err)
	assert.Equal(t, "pit-wall", reply.ChatID)

	chat, err := f.messages.GetChat(ctx, "pit-wall")
	require.NoError(t, err)
	assert.Equal(t, "Fastest lap at Spa ever", chat.Title)
}

func TestAsk_RejectsEmptyText(t *testing.T) {
	f := newChatFixture()
	_, err := f.svc.Ask(context.Background(), "", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEnqueue_UnknownChat(t *testing.T) {
	f := newChatFixture()
	_, err := f.svc.Enqueue(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type stubPrompts struct {
	prompt string
	err    error
}

func (p stubPrompts) Load(string) (string, error) { return p.prompt, p.err }
func (p stubPrompts) Reload()                     {}

func TestAsk_UsesPromptStoreSystemPrompt(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture()
	f.svc.SetPromptStore(stubPrompts{prompt: "You answer in Italian."})

	_, err := f.svc.Ask(ctx, "", "Who won at Monza in 2020?")
	require.NoError(t, err)
	prompt := f.llm.lastPrompt()
	require.NotEmpty(t, prompt)
	assert.Contains(t, prompt[0].Content, "You answer in Italian.")

	f.svc.SetPromptStore(stubPrompts{err: errors.New("unreadable")})
	_, err = f.svc.Ask(ctx, "", "And in 2021?")
	require.NoError(t, err)
	assert.Contains(t, f.llm.lastPrompt()[0].Content, DefaultSystemPrompt)
}
