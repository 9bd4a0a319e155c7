package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/jarvis/internal/config"
	"github.com/sandevgo/jarvis/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedProvider struct {
	name string
}

func (p *namedProvider) Chat(_ context.Context, _ []core.Message) (core.Message, error) {
	return core.Message{Role: core.RoleAssistant, Content: p.name}, nil
}

func TestDynamicProvider_SetModel(t *testing.T) {
	cfg := &config.AppConfig{Provider: "groq", Model: "llama-3.1-8b-instant"}

	factory := func(_ context.Context, c *config.AppConfig) (core.AIProvider, error) {
		if c.Provider == "anthropic" {
			return nil, errors.New("ANTHROPIC_API_KEY is not set")
		}
		return &namedProvider{name: c.Provider + "/" + c.Model}, nil
	}

	d, err := newDynamicProvider(context.Background(), cfg, factory)
	require.NoError(t, err)

	msg, err := d.Chat(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "groq/llama-3.1-8b-instant", msg.Content)

	require.NoError(t, d.SetModel(context.Background(), "openai/gpt-4o-mini"))
	assert.Equal(t, "openai", d.GetProvider())
	assert.Equal(t, "gpt-4o-mini", d.GetModel())

	msg, err = d.Chat(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-4o-mini", msg.Content)

	// failed switch keeps the previous provider and config
	err = d.SetModel(context.Background(), "anthropic/claude")
	require.Error(t, err)
	assert.Equal(t, "openai", d.GetProvider())
	assert.Equal(t, "gpt-4o-mini", d.GetModel())

	msg, err = d.Chat(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-4o-mini", msg.Content)
}

func TestNewProvider_MissingKeys(t *testing.T) {
	for _, provider := range []string{"groq", "openai", "anthropic", "openrouter", "custom", "unknown"} {
		t.Run(provider, func(t *testing.T) {
			_, err := NewProvider(context.Background(), &config.AppConfig{Provider: provider, Model: "m"})
			assert.Error(t, err)
		})
	}
}

func TestNewProvider_Groq(t *testing.T) {
	p, err := NewProvider(context.Background(), &config.AppConfig{Provider: "groq", Model: "m", GroqAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &Groq{}, p)
}
