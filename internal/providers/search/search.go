package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/inbucket/html2text"
	"github.com/sandevgo/jarvis/internal/config"
	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/pkg/log"
	"github.com/sandevgo/jarvis/pkg/retry"
)

const (
	maxResponseSize      = 1 << 20
	defaultSearchTimeout = 10 * time.Second
)

type options struct {
	timeout time.Duration
	retry   *retry.Config
	base    string
}

func (o options) baseURL(def string) string {
	if o.base != "" {
		return o.base
	}
	return def
}

type Option func(*options)

func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithRetry(cfg *retry.Config) Option {
	return func(o *options) { o.retry = cfg }
}

// WithBaseURL points the searcher at another host, mostly for tests.
func WithBaseURL(u string) Option {
	return func(o *options) { o.base = u }
}

func applyOptions(opts []Option) options {
	o := options{
		timeout: defaultSearchTimeout,
		retry:   retry.NewDefaultConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// cleanSnippet strips markup and collapses whitespace so the snippet reads as one paragraph.
func cleanSnippet(s string) string {
	if strings.ContainsAny(s, "<&") {
		if text, err := html2text.FromString(s, html2text.Options{OmitLinks: true}); err == nil {
			s = text
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

func NewSearcher(ctx context.Context, cfg *config.SearchConfig) (core.WebSearcher, error) {
	log.FromCtx(ctx).Info().Str("provider", cfg.Provider).Msg("starting web search provider")

	switch strings.ToLower(cfg.Provider) {
	case "", "tavily":
		if cfg.TavilyAPIKey == "" {
			return nil, fmt.Errorf("TAVILY_API_KEY is not set")
		}
		return NewTavily(cfg.TavilyAPIKey, WithTimeout(cfg.Timeout)), nil
	case "duckduckgo", "ddg":
		return NewDuckDuckGo(WithTimeout(cfg.Timeout)), nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Provider)
	}
}
