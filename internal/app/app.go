// Package app wires paddock's adapters and services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/custodia-labs/paddock/internal/adapters/driven/ai"
	"github.com/custodia-labs/paddock/internal/adapters/driven/config/file"
	"github.com/custodia-labs/paddock/internal/adapters/driven/ergast"
	"github.com/custodia-labs/paddock/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/paddock/internal/adapters/driven/storage/sqlite"
	memoryindex "github.com/custodia-labs/paddock/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/paddock/internal/adapters/driven/vector/pgvector"
	"github.com/custodia-labs/paddock/internal/config"
	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
	"github.com/custodia-labs/paddock/internal/core/services"
	"github.com/custodia-labs/paddock/internal/logger"
)

// App holds every component built for one process.
type App struct {
	Config *config.Config

	Records    driven.RecordStore
	Embeddings driven.EmbeddingStore
	Messages   driven.MessageStore
	Tasks      driven.SchedulerStore // nil on postgres
	State      driven.StateStore
	Prompts    driven.PromptStore
	Index      driven.VectorIndex
	Source     driven.RaceDataSource

	// Embedder and LLM are nil when their provider is disabled or lacks a key.
	Embedder driven.EmbeddingService
	LLM      driven.LLMService

	Sync      *services.SyncEngine
	Generator *services.EmbeddingGenerator
	Retriever *services.Retriever
	Chat      *services.ChatService
	TaskLog   *services.TaskLog

	prompts *file.PromptStore
	log     *zap.Logger
	closers []func() error
}

// New builds the application. AI services are created without a
// connectivity check; use ai.ValidateEmbeddingConfig for that.
func New(ctx context.Context, cfg *config.Config) (a *App, err error) {
	a = &App{Config: cfg, log: logger.Named("app")}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	dataDir, err := cfg.ResolvedDataDir()
	if err != nil {
		return nil, err
	}

	pool, err := a.openStore(ctx, dataDir)
	if err != nil {
		return nil, err
	}

	state, err := file.NewStateStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening state file: %w", err)
	}
	a.State = state

	prompts, err := file.NewPromptStore(filepath.Join(dataDir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}
	a.Prompts = prompts
	a.prompts = prompts

	if a.Embedder, err = ai.CreateEmbeddingService(cfg.EmbeddingSettings()); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if a.Embedder != nil {
		a.closers = append(a.closers, a.Embedder.Close)
	}
	if a.LLM, err = ai.CreateLLMService(cfg.LLMSettings()); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if a.LLM != nil {
		a.closers = append(a.closers, a.LLM.Close)
	}

	dims := cfg.EmbeddingSettings().ResolvedDimensions()
	persistent := cfg.Index.Backend == string(domain.VectorBackendPgvector)
	if persistent {
		if pool == nil {
			shared, err := postgres.NewConnection(ctx, &postgres.Config{
				URL:            cfg.Store.DatabaseURL,
				MaxConnections: cfg.Store.MaxConnections,
			})
			if err != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
			}
			a.closers = append(a.closers, func() error { shared.Close(); return nil })
			pool = shared
		}
		a.Index = pgvector.NewIndex(pool, dims)
	} else {
		a.Index = memoryindex.NewIndex(dims)
	}
	a.closers = append(a.closers, a.Index.Close)

	a.Source = ergast.NewClient(ergast.Config{
		BaseURL:           cfg.Ergast.BaseURL,
		Timeout:           cfg.Ergast.Timeout,
		RequestsPerSecond: cfg.Ergast.RequestsPerSecond,
	}, logger.L())

	if a.Embedder != nil {
		a.Generator = services.NewEmbeddingGenerator(a.Records, a.Embeddings, a.Embedder, a.Index)
	}
	a.Retriever = services.NewRetriever(a.Embeddings, a.Embedder, a.Index, services.RetrieverConfig{
		CacheSize:  cfg.Index.CacheSize,
		Persistent: persistent,
	})
	a.Sync = services.NewSyncEngine(a.Source, a.Records, nil, services.SyncConfig{
		BatchSize:          cfg.Sync.BatchSize,
		PageSize:           cfg.Sync.PageSize,
		PlaceholderDrivers: cfg.Sync.PlaceholderDrivers,
	})

	chatCfg := services.DefaultChatConfig()
	chatCfg.TopK = cfg.Chat.TopK
	chatCfg.Temperature = cfg.LLM.Temperature
	chatCfg.MaxTokens = cfg.LLM.MaxTokens
	var retriever driving.RetrievalService
	if a.Embedder != nil {
		retriever = a.Retriever
	}
	a.Chat = services.NewChatService(a.Messages, retriever, a.LLM, a.State, chatCfg)
	a.TaskLog = services.NewTaskLog(a.Tasks)
	a.Chat.SetPromptStore(a.Prompts)

	return a, nil
}

// openStore opens the record, embedding and message stores. The pool is
// returned when the backend is postgres so the vector index can share it.
func (a *App) openStore(ctx context.Context, dataDir string) (*pgxpool.Pool, error) {
	cfg := a.Config
	switch cfg.Store.Backend {
	case "postgres":
		store, err := postgres.NewStore(ctx, &postgres.Config{
			URL:            cfg.Store.DatabaseURL,
			MaxConnections: cfg.Store.MaxConnections,
		}, logger.Named("postgres"))
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		a.Records = store.RecordStore()
		a.Embeddings = store.EmbeddingStore()
		a.Messages = store.MessageStore()
		return store.Pool(), nil
	default:
		path := cfg.Store.Path
		if path == "" {
			path = filepath.Join(dataDir, sqlite.DefaultFileName)
		}
		store, err := sqlite.NewStore(path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		a.Records = store.RecordStore()
		a.Embeddings = store.EmbeddingStore()
		a.Messages = store.MessageStore()
		a.Tasks = store.SchedulerStore()
		return nil, nil
	}
}

// WithSyncEmbeddings returns a sync engine that embeds each written batch.
func (a *App) WithSyncEmbeddings() (*services.SyncEngine, error) {
	if a.Generator == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	return services.NewSyncEngine(a.Source, a.Records, a.Generator, services.SyncConfig{
		BatchSize:          a.Config.Sync.BatchSize,
		PageSize:           a.Config.Sync.PageSize,
		PlaceholderDrivers: a.Config.Sync.PlaceholderDrivers,
	}), nil
}

// Scheduler builds the background scheduler. The chat poll task runs when
// chat is true; the season sync task runs when scheduler.sync_interval is set.
func (a *App) Scheduler(chat bool) *services.Scheduler {
	cfg := domain.SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]domain.TaskConfig{
			domain.TaskIDChatPoll: {
				Enabled:     chat,
				Interval:    a.Config.Chat.PollInterval,
				MaxInterval: a.Config.Chat.MaxPollInterval,
			},
			domain.TaskIDSeasonSync: {
				Enabled:  a.Config.Scheduler.SyncInterval > 0,
				Interval: a.Config.Scheduler.SyncInterval,
			},
		},
	}
	s := services.NewScheduler(cfg, a.Tasks)
	s.Register(domain.TaskIDChatPoll, "Chat poll", func(ctx context.Context) (int, error) {
		done, err := a.Chat.Poll(ctx)
		if done {
			return 1, err
		}
		return 0, err
	})
	s.Register(domain.TaskIDSeasonSync, "Season sync", func(ctx context.Context) (int, error) {
		report, err := a.Sync.Run(ctx, domain.SyncOptions{Seasons: a.Config.Seasons()})
		if errors.Is(err, domain.ErrSyncInProgress) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return report.RowsWritten(), nil
	})
	return s
}

// WatchPrompts reloads prompt files as they are edited until ctx is done.
func (a *App) WatchPrompts(ctx context.Context) error {
	return a.prompts.Watch(ctx, logger.Named("prompts"), nil)
}

// Close releases every resource in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
