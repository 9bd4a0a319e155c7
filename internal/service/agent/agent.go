package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/internal/service/session"
	"github.com/sandevgo/jarvis/pkg/log"
)

const (
	ReplySaved       = "Got it."
	ReplyUnclearFact = "I didn't catch that fact clearly."
	ReplySaveFailed  = "I couldn't save that, please try again."
	ReplyTime        = "It's %s."
	NoResults        = "No results."

	factSource = "user"
)

type Sessions interface {
	Lock(id string) func()
	GetOrCreate(ctx context.Context, id string) ([]core.Message, error)
	Append(ctx context.Context, id string, msg core.Message) error
}

type Memory interface {
	Save(ctx context.Context, text, source string) (core.Fact, error)
	IndexQuery(ctx context.Context, text string, k int) core.Retrieval
	TopK() int
}

// Turn describes what happened while answering one utterance.
type Turn struct {
	Reply      string
	Command    Command
	Retrieval  core.Retrieval
	ModelCalls int
	// SaveErr is set when a SAVE was accepted but could not be persisted.
	SaveErr error
}

type Dispatcher struct {
	ai       core.AIProvider
	sessions Sessions
	memory   Memory
	search   core.WebSearcher
	clock    core.Clock
	trim     session.TrimPolicy
	filter   FactFilter
}

type Option func(*Dispatcher)

func WithTrimPolicy(p session.TrimPolicy) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.trim = p
		}
	}
}

func WithFactFilter(f FactFilter) Option {
	return func(d *Dispatcher) { d.filter = f }
}

func NewDispatcher(
	ai core.AIProvider,
	sessions Sessions,
	memory Memory,
	search core.WebSearcher,
	clock core.Clock,
	opts ...Option,
) *Dispatcher {
	d := &Dispatcher{
		ai:       ai,
		sessions: sessions,
		memory:   memory,
		search:   search,
		clock:    clock,
		trim:     session.KeepAll{},
		filter:   DefaultFactFilter(DefaultMinFactLength),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Run(ctx context.Context, sessionID, utterance string) (string, error) {
	turn, err := d.RunTurn(ctx, sessionID, utterance)
	if err != nil {
		return "", err
	}
	return turn.Reply, nil
}

// RunTurn answers one utterance. Turns on the same session run one at a time.
// A *core.ModelError aborts the turn after the user message was recorded.
func (d *Dispatcher) RunTurn(ctx context.Context, sessionID, utterance string) (*Turn, error) {
	logger := log.FromCtx(ctx).With().Str("session", sessionID).Logger()
	ctx = logger.WithContext(ctx)

	release := d.sessions.Lock(sessionID)
	defer release()

	if _, err := d.sessions.GetOrCreate(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if err := d.sessions.Append(ctx, sessionID, core.Message{Role: core.RoleUser, Content: utterance}); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}
	history, err := d.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	view := d.trim.Apply(history)

	turn := &Turn{}

	raw, err := d.generate(ctx, "classify", view)
	turn.ModelCalls++
	if err != nil {
		return nil, err
	}

	turn.Command = ParseCommand(raw)
	logger.Debug().Str("command", turn.Command.Kind.String()).Str("argument", turn.Command.Argument).Msg("parsed model reply")

	switch turn.Command.Kind {
	case CommandSave:
		turn.Reply = d.save(ctx, turn.Command.Argument, turn)

	case CommandSearch:
		text, retrieval := d.recall(ctx, turn.Command.Argument)
		turn.Retrieval = retrieval
		turn.Reply, err = d.generate(ctx, "answer", composeFollowUp(LabelInfo, text, utterance, view))
		turn.ModelCalls++

	case CommandGoogle:
		text := d.webSearch(ctx, turn.Command.Argument)
		turn.Reply, err = d.generate(ctx, "answer", composeFollowUp(LabelWeb, text, utterance, view))
		turn.ModelCalls++

	case CommandTime:
		turn.Reply = fmt.Sprintf(ReplyTime, d.clock.Now())

	default:
		turn.Reply = raw
	}
	if err != nil {
		return nil, err
	}

	if err := d.sessions.Append(ctx, sessionID, core.Message{Role: core.RoleAssistant, Content: turn.Reply}); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	logger.Info().
		Str("command", turn.Command.Kind.String()).
		Int("model_calls", turn.ModelCalls).
		Msg("turn completed")
	return turn, nil
}

func (d *Dispatcher) generate(ctx context.Context, op string, messages []core.Message) (string, error) {
	msg, err := d.ai.Chat(ctx, messages)
	if err != nil {
		return "", &core.ModelError{Op: op, Err: err}
	}
	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return "", &core.ModelError{Op: op, Err: errors.New("empty response")}
	}
	return text, nil
}

func (d *Dispatcher) save(ctx context.Context, text string, turn *Turn) string {
	logger := log.FromCtx(ctx)

	if !d.filter.Accept(text) {
		logger.Info().Str("candidate", text).Msg("fact rejected by filter")
		return ReplyUnclearFact
	}

	if _, err := d.memory.Save(ctx, text, factSource); err != nil {
		logger.Error().Err(err).Msg("failed to save fact")
		turn.SaveErr = err
		return ReplySaveFailed
	}
	return ReplySaved
}

// recall runs the memory lookup and renders the matches as newline-joined text.
func (d *Dispatcher) recall(ctx context.Context, query string) (string, core.Retrieval) {
	r := d.memory.IndexQuery(ctx, query, d.memory.TopK())
	if r.Status == core.RetrievalUnavailable {
		log.FromCtx(ctx).Warn().Msg("memory unavailable, answering without it")
	}
	return strings.Join(r.Texts, "\n"), r
}

// webSearch never fails: errors and empty snippets become NoResults.
func (d *Dispatcher) webSearch(ctx context.Context, query string) string {
	if d.search == nil {
		return NoResults
	}
	snippet, err := d.search.Search(ctx, query)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("query", query).Msg("web search failed")
		return NoResults
	}
	if strings.TrimSpace(snippet) == "" {
		return NoResults
	}
	return snippet
}

var _ core.Agent = (*Dispatcher)(nil)
