package command

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sandevgo/jarvis/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConfig struct {
	provider, model string
}

func (f *fakeConfig) GetModel() string    { return f.model }
func (f *fakeConfig) GetProvider() string { return f.provider }
func (f *fakeConfig) SetModel(m string) error {
	f.model = m
	return nil
}

type fakeState struct {
	cfg *fakeConfig
	err error
}

func (s *fakeState) ChangeModel(_ context.Context, model string) error {
	if s.err != nil {
		return s.err
	}
	return s.cfg.SetModel(model)
}

type fakeSessions struct {
	reset []string
}

func (f *fakeSessions) Reset(_ context.Context, id string) error {
	f.reset = append(f.reset, id)
	return nil
}

type fakeMemory struct {
	retrieval core.Retrieval
	ingested  map[string]string
	factLog   int
}

func (f *fakeMemory) IndexQuery(context.Context, string, int) core.Retrieval { return f.retrieval }
func (f *fakeMemory) TopK() int                                            { return 3 }
func (f *fakeMemory) BulkIngest(_ context.Context, text, tag string) (int, error) {
	if f.ingested == nil {
		f.ingested = map[string]string{}
	}
	f.ingested[tag] = text
	return 1, nil
}
func (f *fakeMemory) IngestFactLog(context.Context) (int, error) { return f.factLog, nil }

func newTestRouter() (*Router, *fakeConfig, *fakeState, *fakeSessions, *fakeMemory) {
	cfg := &fakeConfig{provider: "groq", model: "llama-3.1-8b-instant"}
	state := &fakeState{cfg: cfg}
	sessions := &fakeSessions{}
	memory := &fakeMemory{}
	return New(NewCommands(cfg, state, sessions, memory)), cfg, state, sessions, memory
}

func TestRouter_NotACommand(t *testing.T) {
	r, _, _, _, _ := newTestRouter()
	out, ok := r.Execute(context.Background(), "s1", "hello there")
	assert.False(t, ok)
	assert.Empty(t, out)
}

func TestRouter_Unknown(t *testing.T) {
	r, _, _, _, _ := newTestRouter()
	out, ok := r.Execute(context.Background(), "s1", "/nope")
	assert.True(t, ok)
	assert.Equal(t, "Unknown command: /nope", out)
}

func TestRouter_Help(t *testing.T) {
	r, _, _, _, _ := newTestRouter()
	out, ok := r.Execute(context.Background(), "s1", "/help")
	require.True(t, ok)
	for _, name := range []string{"/model", "/reset", "/recall", "/ingest"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Tip")

	names := []string{}
	for _, c := range r.ListCommands() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"ingest", "model", "recall", "reset"}, names)
}

func TestRouter_Model(t *testing.T) {
	r, cfg, state, _, _ := newTestRouter()
	ctx := context.Background()

	out, _ := r.Execute(ctx, "s1", "/model")
	assert.Contains(t, out, "llama-3.1-8b-instant")

	out, _ = r.Execute(ctx, "s1", "/model gpt-4o-mini")
	assert.Contains(t, out, "groq/gpt-4o-mini")
	assert.Equal(t, "gpt-4o-mini", cfg.model)

	state.err = errors.New("OPENAI_API_KEY is not set")
	out, _ = r.Execute(ctx, "s1", "/model openai/gpt-4o")
	assert.Contains(t, out, "OPENAI_API_KEY is not set")
}

func TestRouter_Reset(t *testing.T) {
	r, _, _, sessions, _ := newTestRouter()
	out, ok := r.Execute(context.Background(), "tg-42", "/reset")
	require.True(t, ok)
	assert.Contains(t, out, "Conversation cleared")
	assert.Equal(t, []string{"tg-42"}, sessions.reset)
}

func TestRouter_Recall(t *testing.T) {
	r, _, _, _, memory := newTestRouter()
	ctx := context.Background()

	memory.retrieval = core.Retrieval{Texts: []string{"My name is Dana"}, Status: core.RetrievalFound}
	out, _ := r.Execute(ctx, "s1", "/recall my name")
	assert.Contains(t, out, "My name is Dana")

	memory.retrieval = core.Retrieval{Status: core.RetrievalEmpty}
	out, _ = r.Execute(ctx, "s1", "/recall my name")
	assert.Contains(t, out, "Nothing relevant found.")

	memory.retrieval = core.Retrieval{Status: core.RetrievalUnavailable}
	out, _ = r.Execute(ctx, "s1", "/recall my name")
	assert.Contains(t, out, "unavailable")
}

func TestRouter_Ingest(t *testing.T) {
	r, _, _, _, memory := newTestRouter()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "manual.txt")
	require.NoError(t, os.WriteFile(path, []byte("press the red button"), 0o644))

	out, _ := r.Execute(ctx, "s1", "/ingest "+path)
	assert.Contains(t, out, "Indexed 1 chunks from manual.txt")
	assert.Equal(t, "press the red button", memory.ingested["manual.txt"])

	memory.factLog = 4
	out, _ = r.Execute(ctx, "s1", "/ingest facts")
	assert.Contains(t, out, "Indexed 4 chunks from fact log")

	out, _ = r.Execute(ctx, "s1", "/ingest /does/not/exist.txt")
	assert.Contains(t, out, "Command Error")
	assert.Contains(t, out, "`/ingest`")

	out, _ = r.Execute(ctx, "s1", "/ingest")
	assert.Contains(t, out, "Usage")
	assert.Contains(t, out, "Tip")
}

func TestResponseFormatter_ListFlattensItems(t *testing.T) {
	f := NewResponseFormatter()
	out := f.List([]string{"first line\nsecond   line", "two"})
	assert.Equal(t, "› first line second line\n› two\n", out)
}
