package domain

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
)

// providerSpec describes what a provider offers and needs.
type providerSpec struct {
	keyEnv         string // empty when no key is needed
	embeddingModel string // empty when the provider cannot embed
	chatModel      string
}

var providers = map[AIProvider]providerSpec{
	AIProviderOllama: {
		embeddingModel: "nomic-embed-text",
		chatModel:      "llama3.2",
	},
	AIProviderOpenAI: {
		keyEnv:         "OPENAI_API_KEY",
		embeddingModel: "text-embedding-3-small",
		chatModel:      "gpt-4o-mini",
	},
	AIProviderAnthropic: {
		keyEnv:    "ANTHROPIC_API_KEY",
		chatModel: "claude-3-5-sonnet-latest",
	},
}

// embeddingDimensions are the vector sizes of well-known embedding models.
var embeddingDimensions = map[string]int{
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	_, ok := providers[p]
	return ok
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return providers[p].keyEnv != ""
}

// APIKeyEnv names the environment variable holding the provider's key.
func (p AIProvider) APIKeyEnv() string {
	return providers[p].keyEnv
}

// SupportsEmbeddings returns true if this provider can generate embeddings.
func (p AIProvider) SupportsEmbeddings() bool {
	return providers[p].embeddingModel != ""
}

// DefaultEmbeddingModel returns the model used when none is configured.
func (p AIProvider) DefaultEmbeddingModel() string {
	return providers[p].embeddingModel
}

// DefaultChatModel returns the chat model used when none is configured.
func (p AIProvider) DefaultChatModel() string {
	return providers[p].chatModel
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string
	APIKey  string

	// Dimensions overrides the known size of the model's vectors.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider.IsValid() && (!e.Provider.RequiresAPIKey() || e.APIKey != "")
}

// ResolvedDimensions returns the configured size, falling back to the
// known size for the model. Zero means unknown.
func (e EmbeddingSettings) ResolvedDimensions() int {
	if e.Dimensions > 0 {
		return e.Dimensions
	}
	return embeddingDimensions[e.Model]
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	Provider AIProvider
	Model    string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string
	APIKey  string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	return l.Provider.IsValid() && (!l.Provider.RequiresAPIKey() || l.APIKey != "")
}

// VectorBackend selects where the vector index lives.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendMemory rebuilds an in-process index from the embeddings table.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendPgvector keeps the index in PostgreSQL.
	VectorBackendPgvector VectorBackend = "pgvector"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorBackendMemory || b == VectorBackendPgvector
}
