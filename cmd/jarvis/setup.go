package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/jarvis/internal/config"
	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/internal/providers/clock"
	"github.com/sandevgo/jarvis/internal/providers/embed"
	"github.com/sandevgo/jarvis/internal/providers/llm"
	"github.com/sandevgo/jarvis/internal/providers/search"
	"github.com/sandevgo/jarvis/internal/service/agent"
	"github.com/sandevgo/jarvis/internal/service/command"
	"github.com/sandevgo/jarvis/internal/service/memory"
	"github.com/sandevgo/jarvis/internal/service/session"
	"github.com/sandevgo/jarvis/internal/service/state"
	"github.com/sandevgo/jarvis/internal/storage/factlog"
	"github.com/sandevgo/jarvis/internal/storage/sqlite"
	"github.com/sandevgo/jarvis/internal/transport/httpapi"
	"github.com/sandevgo/jarvis/internal/transport/telegram"
	"github.com/sandevgo/jarvis/pkg/log"
	"github.com/sandevgo/jarvis/pkg/retry"
	"github.com/sandevgo/jarvis/pkg/srv"
)

// app holds every wired component. Commands pick the parts they need.
type app struct {
	cfg       *config.AppConfig
	memoryCfg *config.MemoryConfig

	db       *sql.DB
	memory   *memory.Memory
	sessions *session.Store
	agent    *agent.Dispatcher
	router   *command.Router
}

func (a *app) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// newMemoryApp wires configuration, storage and long-term memory only.
func newMemoryApp(ctx context.Context) (*app, error) {
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, fmt.Errorf("failed to init env: %w", err)
	}

	// 1. Configuration
	a := &app{
		cfg:       config.NewAppConfig(ctx),
		memoryCfg: config.NewMemoryConfig(ctx),
	}

	// 2. Storage
	if err := os.MkdirAll(a.cfg.GetRuntimePath(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}
	db, err := sqlite.NewDB(ctx, a.cfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.db = db

	// 3. Embedder + memory
	embedder, err := embed.NewEmbedder(ctx, a.memoryCfg, a.cfg.OpenAIAPIKey)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	a.memory = memory.NewMemory(
		a.memoryCfg,
		factlog.NewFile(a.cfg.GetFactLogPath()),
		sqlite.NewVectorIndexWithRetry(db, retry.NewDefaultConfig()),
		embedder,
	)
	return a, nil
}

// newApp wires the full assistant: memory, model, tools, sessions and the dispatcher.
func newApp(ctx context.Context) (*app, error) {
	logger := log.FromCtx(ctx)

	a, err := newMemoryApp(ctx)
	if err != nil {
		return nil, err
	}

	// 4. AI Provider
	aiProvider, err := llm.NewDynamicProvider(ctx, a.cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	// 5. Tools
	var searcher core.WebSearcher
	if s, err := search.NewSearcher(ctx, config.NewSearchConfig(ctx)); err != nil {
		logger.Warn().Err(err).Msg("web search disabled")
	} else {
		searcher = s
	}

	wall, err := clock.New(a.cfg.TimeZone)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize clock: %w", err)
	}

	// 6. Sessions
	var repo core.MessagesRepository
	if a.cfg.PersistSessions {
		repo = sqlite.NewMessagesRepo(a.db)
	}
	a.sessions = session.NewStore(agent.NewSysPrompt(a.cfg.GetPersonaPath()), repo)

	// 7. Dispatcher
	a.agent = agent.NewDispatcher(
		aiProvider,
		a.sessions,
		a.memory,
		searcher,
		wall,
		agent.WithTrimPolicy(session.NewTrimPolicy(a.cfg.ContextWindowSize, a.cfg.ContextTokenBudget)),
		agent.WithFactFilter(agent.DefaultFactFilter(a.memoryCfg.MinFactLength)),
	)

	// 8. Slash commands
	a.router = command.New(command.NewCommands(
		a.cfg,
		state.NewGlobalState(aiProvider),
		a.sessions,
		a.memory,
	))

	logger.Info().
		Str("provider", aiProvider.GetProvider()).
		Str("model", aiProvider.GetModel()).
		Bool("web_search", searcher != nil).
		Msg("jarvis is ready")

	return a, nil
}

func initBackgroundTransports(ctx context.Context, a *app) ([]srv.Service, error) {
	var services []srv.Service

	// Telegram Bot
	if a.cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, a.agent, a.router)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	// HTTP API
	if a.cfg.EnableHTTP {
		services = append(services, httpapi.New(ctx, a.cfg.HTTPAddr, a.agent, a.sessions, a.memory))
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
