package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/internal/providers/embed"
	"github.com/sandevgo/jarvis/pkg/log"
	"github.com/sandevgo/jarvis/pkg/retry"
)

const vectorTable = "memory_vectors"

// VectorIndex stores embeddings as BLOBs and ranks them by cosine similarity in Go.
type VectorIndex struct {
	db      *sql.DB
	retrier *retry.Retrier
}

func NewVectorIndex(db *sql.DB) *VectorIndex {
	return NewVectorIndexWithRetry(db, retry.NewDefaultConfig())
}

func NewVectorIndexWithRetry(db *sql.DB, cfg *retry.Config) *VectorIndex {
	return &VectorIndex{
		db:      db,
		retrier: retry.NewRetrier(cfg),
	}
}

// Provision creates the vector table when it is missing and waits until the database answers.
func (v *VectorIndex) Provision(ctx context.Context) error {
	return v.retrier.Do(ctx, func() error {
		if err := v.db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping: %w", err)
		}

		exists, err := v.tableExists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		log.FromCtx(ctx).Info().Str("table", vectorTable).Msg("vector index missing, creating")
		if err := migrate(ctx, v.db); err != nil {
			return err
		}

		if exists, err = v.tableExists(ctx); err != nil {
			return err
		} else if !exists {
			return fmt.Errorf("vector index %s not ready", vectorTable)
		}
		return nil
	})
}

func (v *VectorIndex) tableExists(ctx context.Context) (bool, error) {
	var name string
	err := v.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, vectorTable,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table: %w", err)
	}
	return true, nil
}

// Upsert inserts a new entry. An existing id is never overwritten.
func (v *VectorIndex) Upsert(ctx context.Context, entry core.IndexEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("index entry id is empty: %w", core.ErrValidation)
	}
	if len(entry.Embedding) == 0 {
		return fmt.Errorf("index entry %s has no embedding: %w", entry.ID, core.ErrValidation)
	}

	blob, err := serializeVector(entry.Embedding)
	if err != nil {
		return err
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = v.db.ExecContext(ctx,
		`INSERT INTO memory_vectors (id, content, source, model, dims, embedding, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Content, entry.Source, entry.Model, len(entry.Embedding), blob, createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert vector %s: %w", entry.ID, err)
	}
	return nil
}

// Query returns up to k entries most similar to vector. Entries of another
// embedding model or dimension are skipped. Equal scores keep insertion order.
func (v *VectorIndex) Query(ctx context.Context, model string, vector []float32, k int) ([]core.IndexMatch, error) {
	if k <= 0 || len(vector) == 0 {
		return nil, nil
	}

	rows, err := v.db.QueryContext(ctx,
		`SELECT id, content, source, embedding FROM memory_vectors
		WHERE dims = ? AND (? = '' OR model = ?)
		ORDER BY seq`,
		len(vector), model, model,
	)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var matches []core.IndexMatch
	for rows.Next() {
		var (
			m    core.IndexMatch
			blob []byte
		)
		if err := rows.Scan(&m.ID, &m.Content, &m.Source, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan vector: %w", err)
		}
		emb, err := deserializeVector(blob)
		if err != nil {
			return nil, err
		}
		m.Score = embed.Cosine(vector, emb)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}

	log.FromCtx(ctx).Debug().Int("matches", len(matches)).Msg("vector search finished")
	return matches, nil
}

func (v *VectorIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := v.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory_vectors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count vectors: %w", err)
	}
	return n, nil
}

var _ core.VectorIndex = (*VectorIndex)(nil)
