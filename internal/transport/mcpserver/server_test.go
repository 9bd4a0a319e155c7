package mcpserver

import (
	"context"
	"strings"
	"testing"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/sandevgo/jarvis/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemory struct {
	saved     []string
	sources   []string
	retrieval core.Retrieval
	queriedK  int
	ingested  string
}

func (f *fakeMemory) Save(_ context.Context, text, source string) (core.Fact, error) {
	if strings.TrimSpace(text) == "" {
		return core.Fact{}, core.ErrValidation
	}
	f.saved = append(f.saved, text)
	f.sources = append(f.sources, source)
	return core.Fact{ID: "fact-1", Text: text, Source: source}, nil
}

func (f *fakeMemory) IndexQuery(_ context.Context, _ string, k int) core.Retrieval {
	f.queriedK = k
	return f.retrieval
}

func (f *fakeMemory) BulkIngest(_ context.Context, text, tag string) (int, error) {
	f.ingested = tag
	return 3, nil
}

func (f *fakeMemory) TopK() int { return 3 }

func call(args map[string]any) mcpproto.CallToolRequest {
	req := mcpproto.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcpproto.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcpproto.TextContent)
	require.True(t, ok, "unexpected content type %T", res.Content[0])
	return text.Text
}

func TestRemember(t *testing.T) {
	mem := &fakeMemory{}
	s := New(mem, strings.NewReader(""), &strings.Builder{})

	res, err := s.remember(context.Background(), call(map[string]any{"text": "my car is blue"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "saved fact-1", resultText(t, res))
	assert.Equal(t, []string{"mcp"}, mem.sources)

	res, err = s.remember(context.Background(), call(map[string]any{"text": "  "}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.remember(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestRecall(t *testing.T) {
	tests := []struct {
		name      string
		retrieval core.Retrieval
		args      map[string]any
		wantErr   bool
		wantText  string
		wantK     int
	}{
		{
			name:      "found",
			retrieval: core.Retrieval{Texts: []string{"a", "b"}, Status: core.RetrievalFound},
			args:      map[string]any{"query": "car", "k": float64(2)},
			wantText:  "a\nb",
			wantK:     2,
		},
		{
			name:      "empty uses default k",
			retrieval: core.Retrieval{Status: core.RetrievalEmpty},
			args:      map[string]any{"query": "car"},
			wantText:  "No matching facts.",
			wantK:     3,
		},
		{
			name:      "unavailable",
			retrieval: core.Retrieval{Status: core.RetrievalUnavailable},
			args:      map[string]any{"query": "car"},
			wantErr:   true,
			wantK:     3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := &fakeMemory{retrieval: tt.retrieval}
			s := New(mem, strings.NewReader(""), &strings.Builder{})

			res, err := s.recall(context.Background(), call(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.wantErr, res.IsError)
			assert.Equal(t, tt.wantK, mem.queriedK)
			if !tt.wantErr {
				assert.Equal(t, tt.wantText, resultText(t, res))
			}
		})
	}
}

func TestIngest(t *testing.T) {
	mem := &fakeMemory{}
	s := New(mem, strings.NewReader(""), &strings.Builder{})

	res, err := s.ingest(context.Background(), call(map[string]any{"text": "doc body", "source": "notes"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "indexed 3 chunk(s) from notes", resultText(t, res))
	assert.Equal(t, "notes", mem.ingested)
}
