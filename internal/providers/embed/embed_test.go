package embed

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandevgo/jarvis/internal/config"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChargram_Deterministic(t *testing.T) {
	e := NewChargram()
	ctx := context.Background()

	a, err := e.Embed(ctx, "My sister's name is Anna")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "My sister's name is Anna")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, e.Dims())
	assert.InDelta(t, 1.0, Norm(a), 1e-5)
}

func TestChargram_Similarity(t *testing.T) {
	e := NewChargram()
	ctx := context.Background()

	fact, _ := e.Embed(ctx, "My sister's name is Anna")
	near, _ := e.Embed(ctx, "sister name")
	far, _ := e.Embed(ctx, "quarterly revenue report")

	assert.Greater(t, Cosine(fact, near), Cosine(fact, far))
}

func TestEmbedders_EmptyText(t *testing.T) {
	for _, e := range []interface {
		Embed(context.Context, string) ([]float32, error)
		Dims() int
	}{NewChargram(), NewHash()} {
		vec, err := e.Embed(context.Background(), "   ")
		require.NoError(t, err)
		assert.Len(t, vec, e.Dims())
		assert.Zero(t, Norm(vec))
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 0}, b: []float32{1, 0}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "unnormalized", a: []float32{3, 4}, b: []float32{6, 8}, want: 1},
		{name: "empty", a: nil, b: []float32{1}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEmbedder(t *testing.T) {
	ctx := context.Background()

	e, err := NewEmbedder(ctx, &config.MemoryConfig{EmbeddingProvider: "local"}, "")
	require.NoError(t, err)
	assert.Equal(t, ModelChargram, e.ModelID())

	e, err = NewEmbedder(ctx, &config.MemoryConfig{EmbeddingProvider: "local", EmbeddingModel: "hash"}, "")
	require.NoError(t, err)
	assert.Equal(t, ModelHash, e.ModelID())

	_, err = NewEmbedder(ctx, &config.MemoryConfig{EmbeddingProvider: "openai"}, "")
	assert.Error(t, err)

	_, err = NewEmbedder(ctx, &config.MemoryConfig{EmbeddingProvider: "pinecone"}, "")
	assert.Error(t, err)
}

func TestOpenAI_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.5,0.25]}],"model":"text-embedding-3-small"}`)
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("key")
	cfg.BaseURL = srv.URL + "/v1"
	e, err := NewOpenAIWithConfig(cfg, "key", "")
	require.NoError(t, err)
	assert.Equal(t, defaultOpenAIModel, e.ModelID())

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
}
