package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/jarvis/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"JARVIS_RUNTIME_PATH"`

	// Language model
	Provider            string `env:"LLM_PROVIDER" envDefault:"groq"`
	Model               string `env:"LLM_MODEL" envDefault:"llama-3.1-8b-instant"`
	GroqAPIKey          string `env:"GROQ_API_KEY"`
	OpenAIAPIKey        string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey     string `env:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey    string `env:"OPENROUTER_API_KEY"`
	OllamaBaseURL       string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	OllamaAPIKey        string `env:"OLLAMA_API_KEY"`
	CustomOpenAIBaseURL string `env:"CUSTOM_OPENAI_BASE_URL"`
	CustomOpenAIAPIKey  string `env:"CUSTOM_OPENAI_API_KEY"`

	// Transport Flags
	EnableCLI      bool   `env:"ENABLE_CLI" envDefault:"true"`
	EnableTelegram bool   `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableHTTP     bool   `env:"ENABLE_HTTP" envDefault:"false"`
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:"127.0.0.1:8088"`

	// Context Management
	ContextWindowSize  int  `env:"CONTEXT_WINDOW_SIZE" envDefault:"20"`
	ContextTokenBudget int  `env:"CONTEXT_TOKEN_BUDGET" envDefault:"0"`
	PersistSessions    bool `env:"PERSIST_SESSIONS" envDefault:"true"`

	TimeZone string `env:"TIME_ZONE" envDefault:"Local"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := ParseAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func ParseAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if c.RuntimePath == "" {
		c.RuntimePath = GetRuntimePath()
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	return c, nil
}

func (c *AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c *AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "jarvis.db")
}

func (c *AppConfig) GetFactLogPath() string {
	return filepath.Join(c.RuntimePath, "knowledge_base.txt")
}

// GetPersonaPath points at an optional markdown file that replaces the built-in persona.
func (c *AppConfig) GetPersonaPath() string {
	return filepath.Join(c.RuntimePath, "PERSONA.md")
}

func (c *AppConfig) GetEnvFilePath() string {
	return filepath.Join(c.RuntimePath, ".env")
}

func (c *AppConfig) GetHistoryFilePath() string {
	return filepath.Join(c.RuntimePath, "input_history")
}

func (c *AppConfig) GetContextWindowSize() int {
	return c.ContextWindowSize
}

func (c *AppConfig) GetProvider() string {
	return c.Provider
}

func (c *AppConfig) GetModel() string {
	return c.Model
}

// SetModel accepts either "model" or "provider/model".
func (c *AppConfig) SetModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("model name is empty")
	}

	if provider, name, ok := strings.Cut(model, "/"); ok && isKnownProvider(provider) {
		if name == "" {
			return fmt.Errorf("model name is empty")
		}
		c.Provider = provider
		c.Model = name
		return nil
	}

	c.Model = model
	return nil
}

func isKnownProvider(name string) bool {
	switch name {
	case "groq", "openai", "anthropic", "openrouter", "ollama", "custom":
		return true
	}
	return false
}
