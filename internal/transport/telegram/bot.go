package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/jarvis/internal/config"
	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const (
	baseContextKey = "base_context"

	replyModelDown = "Sorry, my brain is not responding right now. Please try again in a moment."
	replyFailed    = "Something went wrong while answering. Please try again."
)

type Bot struct {
	bot     *tele.Bot
	agent   core.Agent
	router  core.CmdRouter
	sender  *sender
	ownerID int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	agent core.Agent,
	router core.CmdRouter,
) (*Bot, error) {
	ctx = log.WithComponent(ctx, "telegram")

	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		agent:   agent,
		router:  router,
		sender:  newSender(b),
		ownerID: cfg.OwnerID,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != bot.ownerID {
				return nil
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func sessionID(chatID int64) string {
	return fmt.Sprintf("telegram-%d", chatID)
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx, _ := c.Get(baseContextKey).(context.Context)
	if ctx == nil {
		ctx = context.Background()
	}
	sid := sessionID(c.Chat().ID)
	ctx = log.FromCtx(ctx).With().Str("session", sid).Logger().WithContext(ctx)
	logger := log.FromCtx(ctx)

	_ = c.Notify(tele.Typing)

	if b.router != nil {
		if out, ok := b.router.Execute(ctx, sid, c.Text()); ok {
			return b.sender.sendMarkdown(ctx, c.Chat(), out, true)
		}
	}

	reply, err := b.agent.Run(ctx, sid, c.Text())
	if err != nil {
		logger.Error().Err(err).Msg("agent run failed")
		return c.Send(errorReply(err))
	}

	return b.sender.sendMarkdown(ctx, c.Chat(), reply, false)
}

func errorReply(err error) string {
	if core.IsModelError(err) {
		return replyModelDown
	}
	return replyFailed
}
