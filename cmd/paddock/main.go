// Command paddock mirrors Formula 1 history and answers questions about it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/paddock/internal/adapters/driven/ai"
	"github.com/custodia-labs/paddock/internal/adapters/driving/cli"
	"github.com/custodia-labs/paddock/internal/app"
	"github.com/custodia-labs/paddock/internal/config"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
	"github.com/custodia-labs/paddock/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logger.Sync()

	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(ctx, version); err != nil {
		stop()
		os.Exit(1)
	}
}

func bootstrap(ctx context.Context, path string) (*cli.Services, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireSecrets(config.NeedStore); err != nil {
		return nil, err
	}
	if cfg.File != "" {
		logger.Debug("config loaded from %s", cfg.File)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("starting paddock: %w", err)
	}

	s := &cli.Services{
		Config:    cfg,
		Sync:      a.Sync,
		Retrieval: a.Retriever,
		Chat:      a.Chat,
		Tasks:     a.TaskLog,
		EmbedSync: func() (driving.SyncService, error) {
			return a.WithSyncEmbeddings()
		},
		Scheduler: func(chat bool) driving.Scheduler {
			return a.Scheduler(chat)
		},
		WatchPrompts: a.WatchPrompts,
		Validator:    ai.NewConfigValidator(),
		Close:        a.Close,
	}
	// A nil generator must stay an untyped nil behind the interface.
	if a.Generator != nil {
		s.Embedding = a.Generator
	}
	return s, nil
}
