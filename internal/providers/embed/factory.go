package embed

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/jarvis/internal/config"
	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/pkg/log"
)

// NewEmbedder picks the embedder named by the memory config.
// The local provider accepts "chargram" (default) or "hash" as the model.
func NewEmbedder(ctx context.Context, cfg *config.MemoryConfig, openAIKey string) (core.Embedder, error) {
	var (
		e   core.Embedder
		err error
	)

	switch strings.ToLower(cfg.EmbeddingProvider) {
	case "", "local":
		switch strings.ToLower(cfg.EmbeddingModel) {
		case "", "chargram", ModelChargram:
			e = NewChargram()
		case "hash", ModelHash:
			e = NewHash()
		default:
			return nil, fmt.Errorf("unknown local embedding model: %s", cfg.EmbeddingModel)
		}
	case "openai":
		e, err = NewOpenAI(openAIKey, cfg.EmbeddingModel)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.EmbeddingProvider)
	}

	log.FromCtx(ctx).Info().
		Str("model", e.ModelID()).
		Int("dims", e.Dims()).
		Msg("embedder ready")
	return e, nil
}
