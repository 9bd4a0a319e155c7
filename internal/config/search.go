package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/jarvis/pkg/log"
)

type SearchConfig struct {
	Provider     string        `env:"SEARCH_PROVIDER" envDefault:"tavily"`
	TavilyAPIKey string        `env:"TAVILY_API_KEY"`
	Timeout      time.Duration `env:"SEARCH_TIMEOUT" envDefault:"10s"`
}

func NewSearchConfig(ctx context.Context) *SearchConfig {
	c := &SearchConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Search config")
	}
	return c
}
