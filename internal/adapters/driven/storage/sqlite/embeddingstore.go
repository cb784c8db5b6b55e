package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// embeddingStore implements driven.EmbeddingStore.
type embeddingStore struct {
	store *Store
}

var _ driven.EmbeddingStore = (*embeddingStore)(nil)

// SaveEmbedding writes the embeddings row and the source row's inline
// vector in one transaction. Returns domain.ErrNotFound when the source row
// does not exist.
func (s *embeddingStore) SaveEmbedding(ctx context.Context, rec domain.EmbeddingRecord) error {
	if rec.EntityID == "" {
		return fmt.Errorf("%w: embedding without entity id", domain.ErrInvalidInput)
	}
	table, err := tableFor(rec.Kind)
	if err != nil {
		return err
	}
	if len(rec.Vector) == 0 {
		return fmt.Errorf("%w: empty vector for %s", domain.ErrMalformedVector, rec.IndexKey())
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	blob := float32SliceToBytes(rec.Vector)

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	//nolint:gosec // table comes from a fixed set
	res, err := tx.ExecContext(ctx, "UPDATE "+table+" SET embedding = ? WHERE entity_id = ?", blob, rec.EntityID)
	if err != nil {
		return fmt.Errorf("updating %s embedding: %w", rec.Kind, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s %s: %w", rec.Kind, rec.EntityID, domain.ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO embeddings (kind, entity_id, text, vector, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind, entity_id) DO UPDATE SET
			text = excluded.text,
			vector = excluded.vector,
			updated_at = excluded.updated_at
	`, string(rec.Kind), rec.EntityID, rec.Text, blob, formatTime(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListEmbeddings streams stored records to fn ordered by kind and id.
func (s *embeddingStore) ListEmbeddings(
	ctx context.Context,
	kinds []domain.EntityKind,
	fn func(rec domain.EmbeddingRecord, decodeErr error) error,
) error {
	query := "SELECT kind, entity_id, text, vector, updated_at FROM embeddings"
	args := make([]any, len(kinds))
	for i, k := range kinds {
		args[i] = string(k)
	}
	if len(kinds) > 0 {
		query += " WHERE kind IN (" + placeholders(len(kinds)) + ")"
	}
	query += " ORDER BY kind, entity_id"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec domain.EmbeddingRecord
		var kind, updatedAt string
		var blob []byte
		if err := rows.Scan(&kind, &rec.EntityID, &rec.Text, &blob, &updatedAt); err != nil {
			return fmt.Errorf("scanning embedding: %w", err)
		}
		rec.Kind = domain.EntityKind(kind)
		rec.UpdatedAt = parseTime(updatedAt)

		vec, decodeErr := bytesToFloat32Slice(blob)
		if decodeErr == nil && len(vec) == 0 {
			decodeErr = fmt.Errorf("%w: empty vector", domain.ErrMalformedVector)
		}
		rec.Vector = vec
		if decodeErr != nil {
			rec.Vector = nil
		}
		if err := fn(rec, decodeErr); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating embeddings: %w", err)
	}
	return nil
}

// CountEmbeddings returns the number of stored embeddings of a kind.
func (s *embeddingStore) CountEmbeddings(ctx context.Context, kind domain.EntityKind) (int, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings WHERE kind = ?", string(kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return n, nil
}
