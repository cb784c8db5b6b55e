package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
)

// mockSyncService implements driving.SyncService for testing.
type mockSyncService struct {
	mu      sync.Mutex
	runs    []domain.SyncOptions
	report  *domain.SyncReport
	err     error
	missing map[domain.EntityKind][]int
}

func (m *mockSyncService) Run(_ context.Context, opts domain.SyncOptions) (*domain.SyncReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, opts)
	if m.report == nil {
		return &domain.SyncReport{}, m.err
	}
	return m.report, m.err
}

func (m *mockSyncService) YearsMissing(_ context.Context, kind domain.EntityKind, _ domain.SeasonRange) ([]int, error) {
	return m.missing[kind], nil
}

func (m *mockSyncService) SyncCircuits(_ context.Context) (*domain.KindReport, error) {
	return &domain.KindReport{Kind: domain.KindCircuit}, nil
}

func (m *mockSyncService) SyncEntity(_ context.Context, kind domain.EntityKind, years []int) (*domain.KindReport, error) {
	return &domain.KindReport{Kind: kind, YearsRequested: years}, nil
}

func (m *mockSyncService) Status(_ context.Context) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{}, nil
}

func (m *mockSyncService) lastRun() domain.SyncOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[len(m.runs)-1]
}

// mockEmbeddingGenerator implements driving.EmbeddingGenerator for testing.
type mockEmbeddingGenerator struct {
	kinds  []domain.EntityKind
	report driving.EmbeddingReport
}

func (m *mockEmbeddingGenerator) EmbedRows(_ context.Context, rows []domain.Embeddable) (int, error) {
	return len(rows), nil
}

func (m *mockEmbeddingGenerator) Regenerate(_ context.Context, kinds []domain.EntityKind) (*driving.EmbeddingReport, error) {
	m.kinds = kinds
	report := m.report
	return &report, nil
}

// mockRetrievalService implements driving.RetrievalService for testing.
type mockRetrievalService struct {
	loads   []bool
	load    driving.LoadReport
	hits    []domain.SearchHit
	queries []string
	err     error
}

func (m *mockRetrievalService) Load(_ context.Context, reload bool) (*driving.LoadReport, error) {
	m.loads = append(m.loads, reload)
	report := m.load
	return &report, nil
}

func (m *mockRetrievalService) Search(_ context.Context, query string, k int) ([]domain.SearchHit, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

// mockChatService implements driving.ChatService for testing.
type mockChatService struct {
	asked []string
	chats []string
	err   error
}

func (m *mockChatService) Poll(_ context.Context) (bool, error) { return false, nil }

func (m *mockChatService) Ask(_ context.Context, chatID, text string) (*domain.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	if chatID == "" {
		chatID = "chat-1"
	}
	m.asked = append(m.asked, text)
	m.chats = append(m.chats, chatID)
	return &domain.Message{ChatID: chatID, Role: domain.RoleAssistant, Content: "Answer: " + text}, nil
}

func (m *mockChatService) StartChat(_ context.Context, first string) (*domain.Chat, error) {
	return &domain.Chat{ID: "chat-1", Title: domain.ChatTitle(first)}, nil
}

func (m *mockChatService) Enqueue(_ context.Context, chatID, text string) (*domain.Message, error) {
	return &domain.Message{ChatID: chatID, Role: domain.RoleUser, Content: text}, nil
}

func (m *mockChatService) ListChats(_ context.Context) ([]domain.Chat, error) { return nil, nil }

func (m *mockChatService) History(_ context.Context, _ string) ([]domain.Message, error) {
	return nil, nil
}

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	started bool
	err     error
}

func (m *mockScheduler) Start(_ context.Context) error {
	m.started = true
	return m.err
}

func (m *mockScheduler) Stop() error { return nil }

// mockValidator implements ProviderValidator for testing.
type mockValidator struct {
	embeddingErr error
	llmErr       error
}

func (m *mockValidator) ValidateEmbedding(_ context.Context, _ *domain.EmbeddingSettings) error {
	return m.embeddingErr
}

func (m *mockValidator) ValidateLLM(_ context.Context, _ *domain.LLMSettings) error {
	return m.llmErr
}

// setupServices installs s for one test and resets command state afterwards.
func setupServices(t *testing.T, s *Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() {
		SetServices(nil)
		resetFlags()
	})
}

func resetFlags() {
	syncForce, syncEmbeddings, syncFrom, syncTo, syncKinds = false, false, 0, 0, nil
	missingFrom, missingTo = 0, 0
	indexReload = false
	searchLimit, searchJSON = 4, false
	askChatID, tuiChatID = "", ""
	tasksHistory = 5
	serveAddr, serveNoPoll = "", false
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(bytes.NewBufferString(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}
