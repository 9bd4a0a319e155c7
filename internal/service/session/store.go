package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/pkg/log"
)

// SystemPrompt builds the single system message that opens every history.
type SystemPrompt interface {
	Build() core.Message
}

type thread struct {
	mu       sync.Mutex
	messages []core.Message
	loaded   bool
}

// Store keeps per-session histories in memory, optionally mirrored to a repository.
// Turns on one session are serialized with Lock; sessions never block each other.
type Store struct {
	prompt SystemPrompt
	repo   core.MessagesRepository

	mu      sync.Mutex
	threads map[string]*thread
}

// NewStore creates a store. repo may be nil, in which case histories live only in memory.
func NewStore(prompt SystemPrompt, repo core.MessagesRepository) *Store {
	return &Store{
		prompt:  prompt,
		repo:    repo,
		threads: make(map[string]*thread),
	}
}

func (s *Store) thread(id string) *thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[id]
	if !ok {
		t = &thread{}
		s.threads[id] = t
	}
	return t
}

// Lock takes the per-session turn lock and returns its release func.
func (s *Store) Lock(id string) func() {
	t := s.thread(id)
	t.mu.Lock()
	return t.mu.Unlock
}

// GetOrCreate returns the history of id, starting it with the system message
// when it does not exist yet. The caller must hold Lock(id).
func (s *Store) GetOrCreate(ctx context.Context, id string) ([]core.Message, error) {
	t := s.thread(id)
	if err := s.ensure(ctx, id, t); err != nil {
		return nil, err
	}
	return clone(t.messages), nil
}

// Append adds msg to the end of the history. The caller must hold Lock(id).
func (s *Store) Append(ctx context.Context, id string, msg core.Message) error {
	t := s.thread(id)
	if err := s.ensure(ctx, id, t); err != nil {
		return err
	}

	if s.repo != nil {
		if err := s.repo.AddMessage(ctx, id, msg); err != nil {
			return fmt.Errorf("persist message: %w", err)
		}
	}
	t.messages = append(t.messages, msg)
	return nil
}

// Messages returns a copy of the history without creating it.
func (s *Store) Messages(ctx context.Context, id string) ([]core.Message, error) {
	release := s.Lock(id)
	defer release()

	t := s.thread(id)
	if !t.loaded && s.repo != nil {
		stored, err := s.repo.GetMessages(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
		return stored, nil
	}
	return clone(t.messages), nil
}

// Reset drops the history of id. The next turn starts from a fresh system message.
func (s *Store) Reset(ctx context.Context, id string) error {
	release := s.Lock(id)
	defer release()

	if s.repo != nil {
		if err := s.repo.DeleteSession(ctx, id); err != nil {
			return err
		}
	}

	t := s.thread(id)
	t.messages = nil
	t.loaded = false

	log.FromCtx(ctx).Info().Str("session", id).Msg("session reset")
	return nil
}

func (s *Store) ensure(ctx context.Context, id string, t *thread) error {
	if t.loaded {
		return nil
	}

	if s.repo != nil {
		stored, err := s.repo.GetMessages(ctx, id)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		if len(stored) > 0 && stored[0].Role == core.RoleSystem {
			t.messages = stored
			t.loaded = true
			log.FromCtx(ctx).Debug().Str("session", id).Int("count", len(stored)).Msg("session restored")
			return nil
		}
		if len(stored) > 0 {
			// history without a system head cannot be trusted; start over
			if err := s.repo.DeleteSession(ctx, id); err != nil {
				return err
			}
		}
	}

	sys := s.prompt.Build()
	if s.repo != nil {
		if err := s.repo.AddMessage(ctx, id, sys); err != nil {
			return fmt.Errorf("persist system message: %w", err)
		}
	}
	t.messages = []core.Message{sys}
	t.loaded = true
	return nil
}

func clone(in []core.Message) []core.Message {
	out := make([]core.Message, len(in))
	copy(out, in)
	return out
}
