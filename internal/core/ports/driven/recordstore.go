package driven

import (
	"context"

	"github.com/custodia-labs/paddock/internal/core/domain"
)

// RecordStore persists the mirrored racing records.
//
// Every Upsert call is one batch: it is applied atomically and keyed by the
// entity's natural key, so applying the same rows twice leaves one copy with
// the latest field values. List methods take a season filter where zero means
// every season.
type RecordStore interface {
	UpsertCircuits(ctx context.Context, circuits []domain.Circuit) error
	UpsertConstructors(ctx context.Context, constructors []domain.Constructor) error
	UpsertRaces(ctx context.Context, races []domain.Race) error
	UpsertDrivers(ctx context.Context, drivers []domain.Driver) error
	UpsertResults(ctx context.Context, results []domain.Result) error

	ListCircuits(ctx context.Context) ([]domain.Circuit, error)
	ListConstructors(ctx context.Context, season int) ([]domain.Constructor, error)
	ListRaces(ctx context.Context, season int) ([]domain.Race, error)
	ListDrivers(ctx context.Context, season int) ([]domain.Driver, error)
	ListResults(ctx context.Context, season int) ([]domain.Result, error)

	// ExistingCircuits returns the subset of ids already stored.
	ExistingCircuits(ctx context.Context, ids []string) (map[string]bool, error)

	// ExistingDrivers returns the subset of (driver, season) keys already stored.
	ExistingDrivers(ctx context.Context, keys []domain.DriverKey) (map[domain.DriverKey]bool, error)

	// Seasons returns the distinct seasons present for a partitioned kind.
	Seasons(ctx context.Context, kind domain.EntityKind) ([]int, error)

	// Count returns the number of rows of a kind.
	Count(ctx context.Context, kind domain.EntityKind) (int, error)
}

// EmbeddingStore persists generated embeddings.
type EmbeddingStore interface {
	// SaveEmbedding stores the record in the embeddings table and writes the
	// same vector onto the source row, in one transaction.
	SaveEmbedding(ctx context.Context, record domain.EmbeddingRecord) error

	// ListEmbeddings streams stored records of the given kinds (all kinds when
	// empty) to fn. A row whose vector cannot be decoded is passed with a nil
	// Vector and decodeErr set, so the caller decides how to report it.
	ListEmbeddings(ctx context.Context, kinds []domain.EntityKind, fn func(rec domain.EmbeddingRecord, decodeErr error) error) error

	// CountEmbeddings returns the number of stored embeddings of a kind.
	CountEmbeddings(ctx context.Context, kind domain.EntityKind) (int, error)
}

// MessageStore persists chats and the append-only message log.
type MessageStore interface {
	// CreateChat stores a new chat.
	CreateChat(ctx context.Context, chat domain.Chat) error

	// GetChat retrieves a chat. Returns domain.ErrNotFound if absent.
	GetChat(ctx context.Context, id string) (*domain.Chat, error)

	// ListChats returns chats, newest first.
	ListChats(ctx context.Context) ([]domain.Chat, error)

	// AppendMessage stores a message and sets its ID and CreatedAt.
	AppendMessage(ctx context.Context, msg *domain.Message) error

	// LatestMessage returns the most recent message with the given role
	// across all chats. Returns domain.ErrNotFound if there is none.
	LatestMessage(ctx context.Context, role domain.Role) (*domain.Message, error)

	// ListMessages returns a chat's messages ordered by ID.
	ListMessages(ctx context.Context, chatID string) ([]domain.Message, error)
}
