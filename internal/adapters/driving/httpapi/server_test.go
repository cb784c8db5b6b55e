package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paddock/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
	"github.com/custodia-labs/paddock/internal/core/services"
)

type stubLLM struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (s *stubLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.reply, s.err
}

func (s *stubLLM) ModelName() string            { return "stub" }
func (s *stubLLM) Ping(_ context.Context) error { return nil }
func (s *stubLLM) Close() error                 { return nil }

type fixture struct {
	server *Server
	chat   *services.ChatService
	llm    *stubLLM
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	llm := &stubLLM{reply: "Michael Schumacher won seven titles."}
	chat := services.NewChatService(memory.NewMessageStore(), nil, llm, nil, services.DefaultChatConfig())
	server, err := NewServer(chat, nil)
	require.NoError(t, err)
	return &fixture{server: server, chat: chat, llm: llm}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestNewServer_RequiresChat(t *testing.T) {
	_, err := NewServer(nil, nil)
	assert.ErrorIs(t, err, ErrMissingChatService)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, rec))
}

func TestPostChat_QueryParameters(t *testing.T) {
	f := newFixture(t)
	q := url.Values{"chat_id": {"c-1"}, "user_input": {"Who has the most titles?"}}

	rec := f.do(t, http.MethodPost, "/chat/?"+q.Encode(), nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[chatResponse](t, rec)
	assert.Equal(t, "Michael Schumacher won seven titles.", got.Response)
	assert.Equal(t, "c-1", got.ChatID)

	// The exchange is persisted under the given chat.
	msgs, err := f.chat.History(context.Background(), "c-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
}

func TestPostChat_JSONBody(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/chat/", chatRequest{UserInput: "And in 2004?"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[chatResponse](t, rec)
	assert.NotEmpty(t, got.ChatID)
}

func TestPostChat_MissingInput(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/chat/?chat_id=c-1", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, 0, f.llm.calls)
}

func TestPostChat_GenerationFailure(t *testing.T) {
	f := newFixture(t)
	f.llm.err = errors.New("invalid request: prompt rejected")

	rec := f.do(t, http.MethodPost, "/chat/?chat_id=c-1&user_input=hello", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["detail"], "prompt rejected")
}

func TestCreateChat_EnqueuesFirstMessage(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/chats", createChatRequest{Message: "Who won the 1976 championship in Japan"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var got struct {
		Chat    chatJSON    `json:"chat"`
		Message messageJSON `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Who won the 1976 championship", got.Chat.Title)
	assert.Equal(t, "user", got.Message.Role)

	// The polling loop picks it up.
	done, err := f.chat.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, done)
}

func TestCreateChat_WithoutMessage(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/chats", nil)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got, "chat")
	assert.NotContains(t, got, "message")
}

func TestListChatsAndMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.chat.Ask(ctx, "c-1", "Who won at Suzuka in 1989?")
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/chats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chats := decode[[]chatJSON](t, rec)
	require.Len(t, chats, 1)
	assert.Equal(t, "c-1", chats[0].ID)

	rec = f.do(t, http.MethodGet, "/chats/c-1/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msgs := decode[[]messageJSON](t, rec)
	require.Len(t, msgs, 2)
	assert.Less(t, msgs[0].ID, msgs[1].ID)

	rec = f.do(t, http.MethodGet, "/chats/unknown/messages", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostMessage(t *testing.T) {
	f := newFixture(t)
	chat, err := f.chat.StartChat(context.Background(), "Monza")
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/messages", postMessageRequest{ChatID: chat.ID, Content: "Fastest lap at Monza?"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, 0, f.llm.calls, "answered by the polling loop, not inline")

	rec = f.do(t, http.MethodPost, "/messages", postMessageRequest{ChatID: "missing", Content: "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/messages", map[string]string{"chat_id": chat.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodOptions, "/chat/", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrInvalidInput))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(domain.ErrLLMUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
