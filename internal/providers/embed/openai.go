package embed

import (
	"context"
	"fmt"

	"github.com/sandevgo/jarvis/internal/core"
	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "text-embedding-3-small"

type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	return NewOpenAIWithConfig(openai.DefaultConfig(apiKey), apiKey, model)
}

func NewOpenAIWithConfig(cfg openai.ClientConfig, apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for openai embeddings")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (o *OpenAI) ModelID() string { return o.model }

func (o *OpenAI) Dims() int {
	switch o.model {
	case "text-embedding-3-large":
		return 3072
	default:
		return 1536
	}
}

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(o.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}

var _ core.Embedder = (*OpenAI)(nil)
