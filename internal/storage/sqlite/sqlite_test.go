package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "jarvis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func fastRetry() *retry.Config {
	return &retry.Config{MaxRetries: 1, BackoffFactor: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestVectorIndex_UpsertQuery(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndexWithRetry(newTestDB(t), fastRetry())
	require.NoError(t, idx.Provision(ctx))

	entries := []core.IndexEntry{
		{ID: "a", Content: "My sister's name is Anna", Embedding: []float32{1, 0, 0}},
		{ID: "b", Content: "I park on level 3", Embedding: []float32{0, 1, 0}},
		{ID: "c", Content: "Anna likes tea", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "d", Content: "other model", Embedding: []float32{1, 0}},
	}
	for _, e := range entries {
		require.NoError(t, idx.Upsert(ctx, e))
	}

	got, err := idx.Query(ctx, "", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)

	again, err := idx.Query(ctx, "", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestVectorIndex_QuerySkipsOtherModels(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndexWithRetry(newTestDB(t), fastRetry())

	require.NoError(t, idx.Upsert(ctx, core.IndexEntry{ID: "old", Content: "hash vector", Model: "hash-256", Embedding: []float32{1, 0}}))
	require.NoError(t, idx.Upsert(ctx, core.IndexEntry{ID: "new", Content: "chargram vector", Model: "chargram-256", Embedding: []float32{0.5, 0.5}}))

	got, err := idx.Query(ctx, "chargram-256", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)

	all, err := idx.Query(ctx, "", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestVectorIndex_TiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndexWithRetry(newTestDB(t), fastRetry())

	for _, id := range []string{"first", "second", "third"} {
		require.NoError(t, idx.Upsert(ctx, core.IndexEntry{ID: id, Content: id, Embedding: []float32{0, 1}}))
	}

	got, err := idx.Query(ctx, "", []float32{0, 1}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestVectorIndex_UpsertNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndexWithRetry(newTestDB(t), fastRetry())

	require.NoError(t, idx.Upsert(ctx, core.IndexEntry{ID: "x", Content: "original", Embedding: []float32{1}}))
	err := idx.Upsert(ctx, core.IndexEntry{ID: "x", Content: "replacement", Embedding: []float32{1}})
	require.Error(t, err)

	got, err := idx.Query(ctx, "", []float32{1}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "original", got[0].Content)
}

func TestVectorIndex_EmptyAndInvalid(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndexWithRetry(newTestDB(t), fastRetry())

	got, err := idx.Query(ctx, "", []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.ErrorIs(t, idx.Upsert(ctx, core.IndexEntry{Content: "no id", Embedding: []float32{1}}), core.ErrValidation)
	assert.ErrorIs(t, idx.Upsert(ctx, core.IndexEntry{ID: "y", Content: "no vec"}), core.ErrValidation)
}

func TestVectorIndex_ProvisionRecreatesTable(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	idx := NewVectorIndexWithRetry(db, fastRetry())

	_, err := db.ExecContext(ctx, `DROP TABLE memory_vectors`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM goose_db_version WHERE version_id = 2`)
	require.NoError(t, err)

	require.NoError(t, idx.Provision(ctx))
	require.NoError(t, idx.Provision(ctx))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMessagesRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMessagesRepo(newTestDB(t))

	msgs := []core.Message{
		{Role: core.RoleSystem, Content: "persona"},
		{Role: core.RoleUser, Content: "hi"},
		{Role: core.RoleAssistant, Content: "hello"},
	}
	for _, m := range msgs {
		require.NoError(t, repo.AddMessage(ctx, "s1", m))
	}
	require.NoError(t, repo.AddMessage(ctx, "s2", core.Message{Role: core.RoleUser, Content: "other"}))

	got, err := repo.GetMessages(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, msgs, got)

	require.NoError(t, repo.DeleteSession(ctx, "s1"))
	got, err = repo.GetMessages(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.GetMessages(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSerializeVector_RoundTrip(t *testing.T) {
	in := []float32{0.5, -1.25, 3}
	blob, err := serializeVector(in)
	require.NoError(t, err)
	assert.Len(t, blob, 12)

	out, err := deserializeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = deserializeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
