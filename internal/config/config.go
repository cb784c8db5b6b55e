// Package config loads paddock's configuration.
//
// Values come from an optional YAML file (paddock.yaml) with environment
// variable overrides. A .env file in the working directory is read first so
// local secrets do not have to be exported by hand. Secrets (API keys, the
// database URL) are only read from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "paddock.yaml"

// ProviderNone disables an AI provider.
const ProviderNone = "none"

// Config holds all configuration for paddock.
type Config struct {
	// DataDir holds the SQLite database, the state file and prompts.
	// Empty means ~/.paddock.
	DataDir string `yaml:"data_dir" env:"PADDOCK_DATA_DIR" env-default:""`

	Store     StoreConfig     `yaml:"store"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Ergast    ErgastConfig    `yaml:"ergast"`
	Sync      SyncConfig      `yaml:"sync"`
	Chat      ChatConfig      `yaml:"chat"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	HTTP      HTTPConfig      `yaml:"http"`

	// Secrets - not in YAML
	OpenAIAPIKey    string `yaml:"-" env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"`

	// File is the configuration file that was read, empty when none existed.
	File string `yaml:"-"`
}

// StoreConfig selects the backing store.
type StoreConfig struct {
	// Backend is "sqlite" or "postgres".
	Backend string `yaml:"backend" env:"PADDOCK_STORE" env-default:"sqlite"`

	// Path is the SQLite file. Empty means <data_dir>/paddock.db.
	Path string `yaml:"path" env:"PADDOCK_DB_PATH" env-default:""`

	// DatabaseURL is the PostgreSQL connection string (a Supabase URL works).
	DatabaseURL    string `yaml:"-" env:"DATABASE_URL"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
}

// IndexConfig selects the vector index.
type IndexConfig struct {
	// Backend is "memory" or "pgvector".
	Backend string `yaml:"backend" env:"PADDOCK_INDEX" env-default:"memory"`

	// CacheSize bounds the query embedding cache.
	CacheSize int `yaml:"cache_size" env:"PADDOCK_QUERY_CACHE" env-default:"256"`
}

// EmbeddingConfig selects the embedding provider. Provider "none" disables
// embeddings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" env:"EMBEDDING_PROVIDER" env-default:"openai"`
	Model      string `yaml:"model" env:"EMBEDDING_MODEL" env-default:""`
	BaseURL    string `yaml:"base_url" env:"EMBEDDING_BASE_URL" env-default:""`
	Dimensions int    `yaml:"dimensions" env:"EMBEDDING_DIMENSIONS" env-default:"0"`
}

// LLMConfig selects the chat completion provider. Provider "none" disables
// chat.
type LLMConfig struct {
	Provider    string  `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	Model       string  `yaml:"model" env:"LLM_MODEL" env-default:""`
	BaseURL     string  `yaml:"base_url" env:"LLM_BASE_URL" env-default:""`
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0"`
	MaxTokens   int     `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"1024"`
}

// ErgastConfig configures the racing data API client.
type ErgastConfig struct {
	BaseURL           string        `yaml:"base_url" env:"ERGAST_BASE_URL" env-default:"https://api.jolpi.ca/ergast/f1"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"ERGAST_RATE" env-default:"4"`
	Timeout           time.Duration `yaml:"timeout" env:"ERGAST_TIMEOUT" env-default:"30s"`
}

// SyncConfig tunes the sync engine. Zero years fall back to the default
// range (first season to the current year).
type SyncConfig struct {
	From               int  `yaml:"from" env:"SYNC_FROM" env-default:"0"`
	To                 int  `yaml:"to" env:"SYNC_TO" env-default:"0"`
	BatchSize          int  `yaml:"batch_size" env:"SYNC_BATCH_SIZE" env-default:"1000"`
	PageSize           int  `yaml:"page_size" env:"SYNC_PAGE_SIZE" env-default:"30"`
	PlaceholderDrivers bool `yaml:"placeholder_drivers" env:"SYNC_PLACEHOLDER_DRIVERS" env-default:"false"`
}

// ChatConfig tunes the conversational loop.
type ChatConfig struct {
	TopK int `yaml:"top_k" env:"CHAT_TOP_K" env-default:"4"`

	// PollInterval is the wait between polls of the message store.
	PollInterval time.Duration `yaml:"poll_interval" env:"CHAT_POLL_INTERVAL" env-default:"2s"`

	// MaxPollInterval caps the idle backoff. Equal to PollInterval disables it.
	MaxPollInterval time.Duration `yaml:"max_poll_interval" env:"CHAT_MAX_POLL_INTERVAL" env-default:"30s"`
}

// SchedulerConfig configures background tasks.
type SchedulerConfig struct {
	// SyncInterval runs a sync periodically while serving. Zero disables it.
	SyncInterval time.Duration `yaml:"sync_interval" env:"SCHEDULER_SYNC_INTERVAL" env-default:"0s"`
}

// HTTPConfig configures the HTTP facade.
type HTTPConfig struct {
	Addr string `yaml:"addr" env:"PADDOCK_HTTP_ADDR" env-default:"127.0.0.1:8000"`
}

// Load reads configuration. When path is empty, paddock.yaml in the working
// directory is used if present; otherwise only the environment is read.
// An explicitly named file must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	cfg := &Config{}
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		cfg.File = path
	case explicit || !errors.Is(statErr, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that enumerated values are known and ranges are sane.
// Secrets are checked separately by RequireSecrets, since not every command
// needs every provider.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: store.backend %q (want sqlite or postgres)", domain.ErrInvalidInput, c.Store.Backend)
	}
	if !domain.VectorBackend(c.Index.Backend).IsValid() {
		return fmt.Errorf("%w: index.backend %q (want memory or pgvector)", domain.ErrInvalidInput, c.Index.Backend)
	}
	if p := c.Embedding.Provider; p != ProviderNone {
		ap := domain.AIProvider(p)
		if !ap.IsValid() || !ap.SupportsEmbeddings() {
			return fmt.Errorf("%w: embedding.provider %q", domain.ErrInvalidInput, p)
		}
	}
	if p := c.LLM.Provider; p != ProviderNone && !domain.AIProvider(p).IsValid() {
		return fmt.Errorf("%w: llm.provider %q", domain.ErrInvalidInput, p)
	}
	if c.Sync.From != 0 || c.Sync.To != 0 {
		r := c.Seasons()
		if err := r.Validate(time.Now()); err != nil {
			return err
		}
	}
	if c.Chat.PollInterval <= 0 {
		return fmt.Errorf("%w: chat.poll_interval must be positive", domain.ErrInvalidInput)
	}
	if c.Scheduler.SyncInterval < 0 {
		return fmt.Errorf("%w: scheduler.sync_interval must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

// Need names a capability a command depends on.
type Need int

// Capabilities checked by RequireSecrets.
const (
	NeedStore Need = 1 << iota
	NeedEmbedding
	NeedLLM
)

// RequireSecrets reports the first secret missing for the requested
// capabilities. The error wraps domain.ErrMissingSecret.
func (c *Config) RequireSecrets(needs Need) error {
	if needs&NeedStore != 0 && c.usesPostgres() && c.Store.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL", domain.ErrMissingSecret)
	}
	if needs&NeedEmbedding != 0 {
		if c.Embedding.Provider == ProviderNone {
			return fmt.Errorf("%w: embeddings are disabled", domain.ErrEmbeddingUnavailable)
		}
		if err := c.requireKey(domain.AIProvider(c.Embedding.Provider)); err != nil {
			return err
		}
	}
	if needs&NeedLLM != 0 {
		if c.LLM.Provider == ProviderNone {
			return fmt.Errorf("%w: llm is disabled", domain.ErrLLMUnavailable)
		}
		if err := c.requireKey(domain.AIProvider(c.LLM.Provider)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) requireKey(p domain.AIProvider) error {
	if !p.RequiresAPIKey() || c.apiKey(p) != "" {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrMissingSecret, p.APIKeyEnv())
}

func (c *Config) apiKey(p domain.AIProvider) string {
	switch p {
	case domain.AIProviderOpenAI:
		return c.OpenAIAPIKey
	case domain.AIProviderAnthropic:
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

func (c *Config) usesPostgres() bool {
	return c.Store.Backend == "postgres" || c.Index.Backend == string(domain.VectorBackendPgvector)
}

// ResolvedDataDir returns DataDir, defaulting to ~/.paddock.
func (c *Config) ResolvedDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".paddock"), nil
}

// Seasons returns the configured season range. Zero bounds take the default
// range.
func (c *Config) Seasons() domain.SeasonRange {
	def := domain.DefaultSeasonRange(time.Now())
	r := domain.SeasonRange{From: c.Sync.From, To: c.Sync.To}
	if r.From == 0 {
		r.From = def.From
	}
	if r.To == 0 {
		r.To = def.To
	}
	return r
}

// EmbeddingSettings converts the embedding section into provider settings.
// A disabled provider yields settings that report not configured.
func (c *Config) EmbeddingSettings() *domain.EmbeddingSettings {
	p := domain.AIProvider(c.Embedding.Provider)
	model := c.Embedding.Model
	if model == "" {
		model = p.DefaultEmbeddingModel()
	}
	return &domain.EmbeddingSettings{
		Provider:   p,
		Model:      model,
		BaseURL:    c.Embedding.BaseURL,
		APIKey:     c.apiKey(p),
		Dimensions: c.Embedding.Dimensions,
	}
}

// LLMSettings converts the llm section into provider settings.
func (c *Config) LLMSettings() *domain.LLMSettings {
	p := domain.AIProvider(c.LLM.Provider)
	model := c.LLM.Model
	if model == "" {
		model = p.DefaultChatModel()
	}
	return &domain.LLMSettings{
		Provider: p,
		Model:    model,
		BaseURL:  c.LLM.BaseURL,
		APIKey:   c.apiKey(p),
	}
}
