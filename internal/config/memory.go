package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/jarvis/pkg/log"
)

type MemoryConfig struct {
	EmbeddingProvider string `env:"EMBEDDING_PROVIDER" envDefault:"local"`
	EmbeddingModel    string `env:"EMBEDDING_MODEL"`
	TopK              int    `env:"MEMORY_TOP_K" envDefault:"3"`
	ChunkSize         int    `env:"MEMORY_CHUNK_SIZE" envDefault:"1000"`
	MinFactLength     int    `env:"MIN_FACT_LENGTH" envDefault:"10"`
}

func NewMemoryConfig(ctx context.Context) *MemoryConfig {
	c, err := ParseMemoryConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Memory config")
	}
	return c
}

func ParseMemoryConfig() (*MemoryConfig, error) {
	c := &MemoryConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}
