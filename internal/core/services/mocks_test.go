package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	stdsync "sync"

	"github.com/custodia-labs/paddock/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
)

// --- Mock implementations shared by the service tests ---

// mockSource implements driven.RaceDataSource from in-memory fixtures.
type mockSource struct {
	mu           stdsync.Mutex
	circuits     []domain.Circuit
	constructors map[int][]domain.Constructor
	races        map[int][]domain.Race
	drivers      map[int][]domain.Driver
	results      map[int][]domain.Result
	failSeasons  map[int]bool
	calls        map[string]int
}

func newMockSource() *mockSource {
	return &mockSource{
		constructors: make(map[int][]domain.Constructor),
		races:        make(map[int][]domain.Race),
		drivers:      make(map[int][]domain.Driver),
		results:      make(map[int][]domain.Result),
		failSeasons:  make(map[int]bool),
		calls:        make(map[string]int),
	}
}

func (m *mockSource) record(kind string, season int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[fmt.Sprintf("%s:%d", kind, season)]++
	if m.failSeasons[season] {
		return fmt.Errorf("status 404: %w", domain.ErrSourceUnavailable)
	}
	return nil
}

func (m *mockSource) callCount(kind string, season int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[fmt.Sprintf("%s:%d", kind, season)]
}

func (m *mockSource) Circuits(_ context.Context) ([]domain.Circuit, error) {
	if err := m.record("circuits", 0); err != nil {
		return nil, err
	}
	return m.circuits, nil
}

func (m *mockSource) Constructors(_ context.Context, season int) ([]domain.Constructor, error) {
	if err := m.record("constructors", season); err != nil {
		return nil, err
	}
	return m.constructors[season], nil
}

func (m *mockSource) Races(_ context.Context, season int) ([]domain.Race, error) {
	if err := m.record("races", season); err != nil {
		return nil, err
	}
	return m.races[season], nil
}

func (m *mockSource) Drivers(_ context.Context, season int) ([]domain.Driver, error) {
	if err := m.record("drivers", season); err != nil {
		return nil, err
	}
	return m.drivers[season], nil
}

func (m *mockSource) Results(_ context.Context, season, limit, offset int) (*driven.ResultsPage, error) {
	if err := m.record("results", season); err != nil {
		return nil, err
	}
	rows := m.results[season]
	page := &driven.ResultsPage{Total: len(rows), Limit: limit, Offset: offset}
	if offset >= len(rows) {
		return page, nil
	}
	end := min(offset+limit, len(rows))
	page.Results = rows[offset:end]
	rounds := make(map[int]bool)
	for _, r := range page.Results {
		rounds[r.Round] = true
	}
	page.Races = len(rounds)
	return page, nil
}

// flakyRecordStore fails selected upsert calls.
type flakyRecordStore struct {
	*memory.RecordStore
	mu        stdsync.Mutex
	calls     map[string]int
	failCalls map[string]map[int]bool
}

func newFlakyRecordStore() *flakyRecordStore {
	return &flakyRecordStore{
		RecordStore: memory.NewRecordStore(),
		calls:       make(map[string]int),
		failCalls:   make(map[string]map[int]bool),
	}
}

func (f *flakyRecordStore) failOn(kind string, call int) {
	if f.failCalls[kind] == nil {
		f.failCalls[kind] = make(map[int]bool)
	}
	f.failCalls[kind][call] = true
}

func (f *flakyRecordStore) check(kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[kind]++
	if f.failCalls[kind][f.calls[kind]] {
		return errors.New("write rejected")
	}
	return nil
}

func (f *flakyRecordStore) UpsertConstructors(ctx context.Context, rows []domain.Constructor) error {
	if err := f.check("constructors"); err != nil {
		return err
	}
	return f.RecordStore.UpsertConstructors(ctx, rows)
}

func (f *flakyRecordStore) UpsertResults(ctx context.Context, rows []domain.Result) error {
	if err := f.check("results"); err != nil {
		return err
	}
	return f.RecordStore.UpsertResults(ctx, rows)
}

// mockEmbedder produces deterministic vectors from the text bytes.
type mockEmbedder struct {
	mu       stdsync.Mutex
	calls    int
	failWith map[string]error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	for substr, err := range m.failWith {
		if strings.Contains(text, substr) {
			return nil, err
		}
	}
	vec := make([]float32, 8)
	for i, b := range []byte(text) {
		vec[i%8] += float32(b)
	}
	vec[0]++
	return vec, nil
}

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockEmbedder) Dimensions() int              { return 8 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockLLM records prompts and echoes the last user message.
type mockLLM struct {
	mu      stdsync.Mutex
	prompts [][]driven.ChatMessage
	opts    []driven.ChatOptions
	err     error
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, messages)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	return "answer to: " + messages[len(messages)-1].Content, nil
}

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockLLM) lastPrompt() []driven.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return nil
	}
	return m.prompts[len(m.prompts)-1]
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockRetriever returns canned hits.
type mockRetriever struct {
	hits    []domain.SearchHit
	err     error
	queries []string
}

func (m *mockRetriever) Load(_ context.Context, _ bool) (*driving.LoadReport, error) {
	return &driving.LoadReport{}, nil
}

func (m *mockRetriever) Search(_ context.Context, query string, k int) ([]domain.SearchHit, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.hits) > k {
		return m.hits[:k], nil
	}
	return m.hits, nil
}
