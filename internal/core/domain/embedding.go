package domain

import "time"

// EmbeddingRecord is a stored vector together with the sentence it encodes.
// The embeddings table hydrates the vector index without touching the
// relational rows.
type EmbeddingRecord struct {
	EntityID  string
	Kind      EntityKind
	Text      string
	Vector    []float32
	UpdatedAt time.Time
}

// IndexKey is the vector index identifier for the record.
func (r EmbeddingRecord) IndexKey() string {
	return IndexKey(r.Kind, r.EntityID)
}

// IndexKey joins a kind and an entity id into a single index identifier.
func IndexKey(kind EntityKind, entityID string) string {
	return string(kind) + ":" + entityID
}

// SearchHit is one retrieval result.
type SearchHit struct {
	EntityID string
	Kind     EntityKind
	Text     string
	Score    float64
}
