package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/jarvis/internal/config"
	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/pkg/log"
)

const (
	SourceUser    = "user"
	SourceFactLog = "fact_log"
)

// Memory is the long-term store: a plain-text fact log mirrored into a vector index.
type Memory struct {
	cfg      *config.MemoryConfig
	facts    core.FactLog
	index    core.VectorIndex
	embedder core.Embedder

	provisionMu sync.Mutex
	provisioned bool

	now   func() time.Time
	newID func() (string, error)
}

func NewMemory(
	cfg *config.MemoryConfig,
	facts core.FactLog,
	index core.VectorIndex,
	embedder core.Embedder,
) *Memory {
	return &Memory{
		cfg:      cfg,
		facts:    facts,
		index:    index,
		embedder: embedder,
		now:      time.Now,
		newID:    newFactID,
	}
}

func newFactID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (m *Memory) TopK() int {
	if m.cfg.TopK <= 0 {
		return 3
	}
	return m.cfg.TopK
}

// AppendFact writes text to the fact log. Identical facts are appended again.
func (m *Memory) AppendFact(ctx context.Context, text, source string) (core.Fact, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return core.Fact{}, fmt.Errorf("empty fact: %w", core.ErrValidation)
	}

	id, err := m.newID()
	if err != nil {
		return core.Fact{}, fmt.Errorf("generate fact id: %w", err)
	}

	fact := core.Fact{
		ID:        id,
		Text:      text,
		Source:    source,
		CreatedAt: m.now(),
	}
	if err := m.facts.Append(ctx, fact); err != nil {
		return core.Fact{}, err
	}
	return fact, nil
}

// IndexUpsert embeds the fact and inserts it under the fact's own id.
func (m *Memory) IndexUpsert(ctx context.Context, fact core.Fact) error {
	if err := m.provision(ctx); err != nil {
		return err
	}

	vec, err := m.embedder.Embed(ctx, fact.Text)
	if err != nil {
		return fmt.Errorf("embed fact: %w", err)
	}

	return m.index.Upsert(ctx, core.IndexEntry{
		ID:        fact.ID,
		Content:   fact.Text,
		Source:    fact.Source,
		Model:     m.embedder.ModelID(),
		Embedding: vec,
		CreatedAt: fact.CreatedAt,
	})
}

// IndexQuery returns up to k stored texts, most similar first. It never fails:
// an embedder or index error yields RetrievalUnavailable.
func (m *Memory) IndexQuery(ctx context.Context, text string, k int) core.Retrieval {
	logger := log.FromCtx(ctx)

	if err := m.provision(ctx); err != nil {
		logger.Warn().Err(err).Msg("memory index unavailable")
		return core.Retrieval{Status: core.RetrievalUnavailable}
	}

	vec, err := m.embedder.Embed(ctx, text)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to embed memory query")
		return core.Retrieval{Status: core.RetrievalUnavailable}
	}

	matches, err := m.index.Query(ctx, m.embedder.ModelID(), vec, k)
	if err != nil {
		logger.Warn().Err(err).Msg("memory search failed")
		return core.Retrieval{Status: core.RetrievalUnavailable}
	}

	if len(matches) == 0 {
		return core.Retrieval{Status: core.RetrievalEmpty}
	}

	texts := make([]string, 0, len(matches))
	for _, match := range matches {
		texts = append(texts, match.Content)
	}
	logger.Debug().Int("matches", len(texts)).Msg("memory search finished")
	return core.Retrieval{Texts: texts, Status: core.RetrievalFound}
}

// Save appends the fact to the log and then indexes it. Failures come back as *core.PersistenceError.
func (m *Memory) Save(ctx context.Context, text, source string) (core.Fact, error) {
	fact, err := m.AppendFact(ctx, text, source)
	if err != nil {
		return core.Fact{}, &core.PersistenceError{Op: "append", Err: err}
	}

	if err := m.IndexUpsert(ctx, fact); err != nil {
		return fact, &core.PersistenceError{Op: "index", Err: err}
	}

	log.FromCtx(ctx).Info().Str("fact_id", fact.ID).Str("source", source).Msg("fact saved")
	return fact, nil
}

// BulkIngest splits sourceText into fixed-width chunks and indexes each one
// tagged with sourceTag. Stored chunks carry the tag in their text so recalled
// context can name the document. It returns how many chunks were indexed.
func (m *Memory) BulkIngest(ctx context.Context, sourceText, sourceTag string) (int, error) {
	chunks := ChunkRunes(sourceText, m.cfg.ChunkSize)
	for i, chunk := range chunks {
		chunks[i] = documentChunk(sourceTag, chunk)
	}
	return m.ingest(ctx, chunks, sourceTag)
}

func documentChunk(source, chunk string) string {
	if source == "" {
		return chunk
	}
	return fmt.Sprintf("Source: %s | %s", source, chunk)
}

// IngestFactLog re-indexes every line of the fact log under fresh ids.
func (m *Memory) IngestFactLog(ctx context.Context) (int, error) {
	lines, err := m.facts.ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("read fact log: %w", err)
	}
	return m.ingest(ctx, lines, SourceFactLog)
}

func (m *Memory) ingest(ctx context.Context, texts []string, source string) (int, error) {
	logger := log.FromCtx(ctx).With().Str("source", source).Logger()
	logger.Info().Int("chunks", len(texts)).Msg("ingesting into memory")

	n := 0
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return n, err
		}

		id, err := m.newID()
		if err != nil {
			return n, fmt.Errorf("generate chunk id: %w", err)
		}

		fact := core.Fact{ID: id, Text: text, Source: source, CreatedAt: m.now()}
		if err := m.IndexUpsert(ctx, fact); err != nil {
			return n, fmt.Errorf("index chunk %d: %w", n, err)
		}
		n++
	}

	logger.Info().Int("indexed", n).Msg("memory ingest finished")
	return n, nil
}

// provision makes sure the index exists before first use. A failure is
// retried on the next call.
func (m *Memory) provision(ctx context.Context) error {
	m.provisionMu.Lock()
	defer m.provisionMu.Unlock()

	if m.provisioned {
		return nil
	}
	if err := m.index.Provision(ctx); err != nil {
		return fmt.Errorf("provision index: %w", err)
	}
	m.provisioned = true
	return nil
}
