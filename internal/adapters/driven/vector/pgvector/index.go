// Package pgvector provides a persistent vector index on PostgreSQL with the
// pgvector extension. The extension and table are created on first use, so a
// database without the extension can still back the record store.
package pgvector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/paddock/internal/core/domain"
	"github.com/custodia-labs/paddock/internal/core/ports/driven"
)

// DefaultTable holds the index entries.
const DefaultTable = "vector_entries"

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores entries in a pgvector table and ranks them by cosine distance.
type Index struct {
	pool       *pgxpool.Pool
	table      string
	dimensions int

	once    sync.Once
	initErr error
}

// NewIndex creates an index over the pool. A zero dimension accepts the size
// of the first vector stored.
func NewIndex(pool *pgxpool.Pool, dimensions int) *Index {
	return &Index{pool: pool, table: DefaultTable, dimensions: dimensions}
}

func (x *Index) ensure(ctx context.Context) error {
	x.once.Do(func() {
		_, err := x.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
		if err != nil {
			x.initErr = fmt.Errorf("failed to enable vector extension: %w", err)
			return
		}
		_, err = x.pool.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS `+x.table+` (
				id        TEXT PRIMARY KEY,
				embedding vector NOT NULL,
				text      TEXT NOT NULL,
				metadata  JSONB NOT NULL DEFAULT '{}'
			)
		`)
		if err != nil {
			x.initErr = fmt.Errorf("failed to create %s: %w", x.table, err)
			return
		}
		if x.dimensions == 0 {
			var dims *int
			err = x.pool.QueryRow(ctx, "SELECT vector_dims(embedding) FROM "+x.table+" LIMIT 1").Scan(&dims)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				x.initErr = fmt.Errorf("failed to read index dimensions: %w", err)
				return
			}
			if dims != nil {
				x.dimensions = *dims
			}
		}
	})
	return x.initErr
}

// Add inserts or replaces entries in one transaction.
func (x *Index) Add(ctx context.Context, entries []driven.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := x.ensure(ctx); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	dims := x.dimensions
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("%w: vector entry without id", domain.ErrInvalidInput)
		}
		if dims == 0 {
			dims = len(e.Vector)
		}
		if len(e.Vector) != dims {
			return fmt.Errorf("%w: %s has %d dimensions, index expects %d",
				domain.ErrMalformedVector, e.ID, len(e.Vector), dims)
		}
		if isZero(e.Vector) {
			return fmt.Errorf("%w: %s is a zero vector", domain.ErrMalformedVector, e.ID)
		}
		meta := e.Metadata
		if meta == nil {
			meta = map[string]string{}
		}
		batch.Queue(`
			INSERT INTO `+x.table+` (id, embedding, text, metadata)
			VALUES ($1, $2::vector, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				embedding = EXCLUDED.embedding,
				text = EXCLUDED.text,
				metadata = EXCLUDED.metadata
		`, e.ID, pgvector.NewVector(e.Vector), e.Text, meta)
	}

	err := pgx.BeginFunc(ctx, x.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to add vectors: %w", err)
	}
	x.dimensions = dims
	return nil
}

// Search returns the k entries closest to query, best first.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	if err := x.ensure(ctx); err != nil {
		return nil, err
	}
	if x.dimensions == 0 {
		return nil, nil
	}
	if len(query) != x.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			domain.ErrInvalidInput, len(query), x.dimensions)
	}
	if isZero(query) {
		return nil, fmt.Errorf("%w: zero query vector", domain.ErrInvalidInput)
	}

	rows, err := x.pool.Query(ctx, `
		SELECT id, text, metadata, 1 - (embedding <=> $1::vector) AS similarity
		FROM `+x.table+`
		ORDER BY embedding <=> $1::vector, id
		LIMIT $2
	`, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("failed to search vectors: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (driven.VectorHit, error) {
		var h driven.VectorHit
		err := row.Scan(&h.ID, &h.Text, &h.Metadata, &h.Similarity)
		return h, err
	})
}

// Reset removes every entry.
func (x *Index) Reset(ctx context.Context) error {
	if err := x.ensure(ctx); err != nil {
		return err
	}
	if _, err := x.pool.Exec(ctx, "TRUNCATE "+x.table); err != nil {
		return fmt.Errorf("failed to reset vectors: %w", err)
	}
	return nil
}

// Count returns the number of entries.
func (x *Index) Count(ctx context.Context) (int, error) {
	if err := x.ensure(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := x.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+x.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count vectors: %w", err)
	}
	return n, nil
}

// Close is a no-op; the pool belongs to the store.
func (x *Index) Close() error {
	return nil
}

func isZero(v []float32) bool {
	var s float64
	for _, f := range v {
		s += float64(f) * float64(f)
	}
	return math.Sqrt(s) == 0
}
