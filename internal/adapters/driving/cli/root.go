// Package cli provides the paddock command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paddock/internal/config"
	"github.com/custodia-labs/paddock/internal/core/ports/driving"
	"github.com/custodia-labs/paddock/internal/logger"
)

// version is set by main from build flags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

// Services are the ports the commands drive.
type Services struct {
	Config    *config.Config
	Sync      driving.SyncService
	Embedding driving.EmbeddingGenerator
	Retrieval driving.RetrievalService
	Chat      driving.ChatService
	Tasks     driving.TaskLog

	// EmbedSync returns a sync service that embeds every written batch.
	EmbedSync func() (driving.SyncService, error)

	// Scheduler builds the background scheduler, with the chat poll task
	// enabled when chat is true.
	Scheduler func(chat bool) driving.Scheduler

	// WatchPrompts reloads edited prompt files until its context is done.
	WatchPrompts func(ctx context.Context) error

	// Validator pings AI providers for the check command.
	Validator ProviderValidator

	// Close releases the services' resources.
	Close func()
}

// Bootstrap loads configuration from path and builds the services.
type Bootstrap func(ctx context.Context, path string) (*Services, error)

var (
	bootstrap    Bootstrap
	bootstrapped bool

	cfg              *config.Config
	syncService      driving.SyncService
	embeddingService driving.EmbeddingGenerator
	retrievalService driving.RetrievalService
	chatService      driving.ChatService
	taskLog          driving.TaskLog
	embedSync        func() (driving.SyncService, error)
	newScheduler     func(chat bool) driving.Scheduler
	watchPrompts     func(ctx context.Context) error
	closeServices    func()
)

// skipBootstrap marks commands that run without configuration.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "paddock",
	Short: "Formula 1 history mirror with retrieval-augmented chat",
	Long: `Paddock mirrors Formula 1 circuits, constructors, races, drivers and
results from the Ergast API into a local database, embeds every record, and
answers questions about them with a language model.

Configuration is read from paddock.yaml in the working directory (or --config)
with environment overrides. API keys and DATABASE_URL come from the
environment or a .env file.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file (default paddock.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetBootstrap sets the function that builds services before a command runs.
func SetBootstrap(fn Bootstrap) {
	bootstrap = fn
}

// SetServices installs already-built services. Commands then skip bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	cfg = s.Config
	syncService = s.Sync
	embeddingService = s.Embedding
	retrievalService = s.Retrieval
	chatService = s.Chat
	taskLog = s.Tasks
	embedSync = s.EmbedSync
	newScheduler = s.Scheduler
	watchPrompts = s.WatchPrompts
	providerValidator = s.Validator
	closeServices = s.Close
}

// Execute runs the root command with the given version string.
func Execute(ctx context.Context, v string) error {
	if v != "" {
		version = v
	}
	// Post-run hooks are skipped when a command fails.
	defer release()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipBootstrap] == "true" || bootstrap == nil || bootstrapped {
		return nil
	}

	s, err := bootstrap(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	SetServices(s)
	bootstrapped = true
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	release()
	return nil
}

// release closes services built by bootstrap.
func release() {
	if !bootstrapped {
		return
	}
	if closeServices != nil {
		closeServices()
	}
	SetServices(nil)
	bootstrapped = false
}

// need checks that the secrets a command depends on are present.
func need(n config.Need) error {
	if cfg == nil {
		return nil
	}
	return cfg.RequireSecrets(n)
}

var errNotConfigured = errors.New("service not configured")
