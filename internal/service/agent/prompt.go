package agent

import (
	"fmt"
	"os"
	"strings"

	"github.com/sandevgo/jarvis/internal/core"
)

const defaultPersona = `You are JARVIS, a voice assistant. Be fast and concise.
Keep normal chat replies to one sentence. Your replies are read aloud, so avoid markdown.
If the user says gibberish, ask them to repeat.`

const commandGrammar = `COMMANDS (start your response with one of these when it applies):
1. "CMD: SAVE | <fact>" only for explicit personal facts, like "I live in Berlin".
2. "CMD: SEARCH | <query>" to recall what the user told you before, like "Who am I?".
3. "CMD: GOOGLE | <query>" for weather, news, prices and other live facts.
4. "CMD: TIME" when the user asks for the time.

RULES:
- Do not save small talk. Only save facts.
- Write the command on its own line with nothing after it.`

const (
	LabelInfo = "Info"
	LabelWeb  = "Web"
)

// SysPrompt builds the system message that opens every session. The persona
// can be replaced by a file in the runtime directory; the command grammar cannot.
type SysPrompt struct {
	personaPath string
}

func NewSysPrompt(personaPath string) *SysPrompt {
	return &SysPrompt{personaPath: personaPath}
}

func (p *SysPrompt) Build() core.Message {
	persona := defaultPersona
	if p.personaPath != "" {
		if content, err := os.ReadFile(p.personaPath); err == nil {
			if s := strings.TrimSpace(string(content)); s != "" {
				persona = s
			}
		}
	}
	return core.Message{
		Role:    core.RoleSystem,
		Content: persona + "\n\n" + commandGrammar,
	}
}

// composeFollowUp builds the second model call: the retrieved context and the
// question as a system message, then the conversation without the persona so
// the model answers instead of issuing another command.
func composeFollowUp(label, context, utterance string, history []core.Message) []core.Message {
	if len(history) > 0 && history[0].Role == core.RoleSystem {
		history = history[1:]
	}

	out := make([]core.Message, 0, len(history)+1)
	out = append(out, core.Message{
		Role:    core.RoleSystem,
		Content: fmt.Sprintf("%s: %s. User Question: %s", label, context, utterance),
	})
	return append(out, history...)
}
