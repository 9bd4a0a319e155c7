package session

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/jarvis/internal/core"
)

// TrimPolicy selects which part of a history is sent to the model.
// The leading system message is always kept and stored history is never changed.
type TrimPolicy interface {
	Apply(history []core.Message) []core.Message
}

type KeepAll struct{}

func (KeepAll) Apply(history []core.Message) []core.Message {
	return clone(history)
}

// LastMessages keeps the system message plus the newest N messages, and
// never fewer than the newest one.
type LastMessages struct {
	N int
}

func (p LastMessages) Apply(history []core.Message) []core.Message {
	head, rest := splitSystem(history)
	n := max(p.N, 1)
	if len(rest) > n {
		rest = rest[len(rest)-n:]
	}
	return join(head, rest)
}

// TokenBudget keeps the system message plus the newest messages whose
// combined token count fits MaxTokens. The newest message is kept even when it
// alone is over budget. Count defaults to cl100k_base.
type TokenBudget struct {
	MaxTokens int
	Count     func(string) int
}

func (p TokenBudget) Apply(history []core.Message) []core.Message {
	head, rest := splitSystem(history)
	count := p.Count
	if count == nil {
		count = CountTokens
	}

	if len(rest) == 0 {
		return join(head, rest)
	}

	start := len(rest) - 1
	used := count(rest[start].Content)
	for i := start - 1; i >= 0; i-- {
		used += count(rest[i].Content)
		if used > p.MaxTokens {
			break
		}
		start = i
	}
	return join(head, rest[start:])
}

// NewTrimPolicy picks TokenBudget when budget is positive, otherwise LastMessages
// when window is positive, otherwise KeepAll.
func NewTrimPolicy(window, budget int) TrimPolicy {
	switch {
	case budget > 0:
		return TokenBudget{MaxTokens: budget}
	case window > 0:
		return LastMessages{N: window}
	default:
		return KeepAll{}
	}
}

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

// CountTokens counts cl100k_base tokens. When the encoding cannot be loaded it
// falls back to a rough four characters per token.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	if tkErr != nil {
		return (len([]rune(text)) + 3) / 4
	}
	return len(tk.Encode(text, nil, nil))
}

func splitSystem(history []core.Message) ([]core.Message, []core.Message) {
	if len(history) > 0 && history[0].Role == core.RoleSystem {
		return history[:1], history[1:]
	}
	return nil, history
}

func join(head, rest []core.Message) []core.Message {
	out := make([]core.Message, 0, len(head)+len(rest))
	out = append(out, head...)
	return append(out, rest...)
}
