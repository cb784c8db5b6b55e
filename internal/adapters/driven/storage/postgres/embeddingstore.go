package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// embeddingStore implements driven.EmbeddingStore.
type embeddingStore struct {
	pool *pgxpool.Pool
}

var _ driven.EmbeddingStore = (*embeddingStore)(nil)

func (s *embeddingStore) SaveEmbedding(ctx context.Context, rec domain.EmbeddingRecord) error {
	if rec.EntityID == "" {
		return fmt.Errorf("%w: embedding without entity id", domain.ErrInvalidInput)
	}
	table, key, err := tableFor(rec.Kind)
	if err != nil {
		return err
	}
	if len(rec.Vector) == 0 {
		return fmt.Errorf("%w: empty vector for %s", domain.ErrMalformedVector, rec.IndexKey())
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "UPDATE "+table+" SET embedding = $1 WHERE "+key+" = $2", rec.Vector, rec.EntityID)
		if err != nil {
			return fmt.Errorf("failed to update %s embedding: %w", rec.Kind, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%s %s: %w", rec.Kind, rec.EntityID, domain.ErrNotFound)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO embeddings (kind, entity_id, text, vector, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (kind, entity_id) DO UPDATE SET
				text = EXCLUDED.text,
				vector = EXCLUDED.vector,
				updated_at = EXCLUDED.updated_at
		`, string(rec.Kind), rec.EntityID, rec.Text, rec.Vector, rec.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save embedding: %w", err)
		}
		return nil
	})
}

func (s *embeddingStore) ListEmbeddings(
	ctx context.Context,
	kinds []domain.EntityKind,
	fn func(rec domain.EmbeddingRecord, decodeErr error) error,
) error {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT kind, entity_id, text, vector, updated_at
		FROM embeddings
		WHERE cardinality($1::text[]) = 0 OR kind = ANY($1)
		ORDER BY kind, entity_id
	`, names)
	if err != nil {
		return fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec domain.EmbeddingRecord
		var kind string
		if err := rows.Scan(&kind, &rec.EntityID, &rec.Text, &rec.Vector, &rec.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan embedding: %w", err)
		}
		rec.Kind = domain.EntityKind(kind)

		var decodeErr error
		if len(rec.Vector) == 0 {
			decodeErr = fmt.Errorf("%w: empty vector", domain.ErrMalformedVector)
		}
		if err := fn(rec, decodeErr); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *embeddingStore) CountEmbeddings(ctx context.Context, kind domain.EntityKind) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM embeddings WHERE kind = $1", string(kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return n, nil
}
