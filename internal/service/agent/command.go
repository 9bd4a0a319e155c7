package agent

import "strings"

type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandSave
	CommandSearch
	CommandGoogle
	CommandTime
)

func (k CommandKind) String() string {
	switch k {
	case CommandSave:
		return "SAVE"
	case CommandSearch:
		return "SEARCH"
	case CommandGoogle:
		return "GOOGLE"
	case CommandTime:
		return "TIME"
	default:
		return "NONE"
	}
}

// Command is what the model asked for in its reply. Argument is empty for TIME and NONE.
type Command struct {
	Kind     CommandKind
	Argument string
}

// Markers in priority order. Matching is a case-sensitive substring test,
// so a marker quoted inside prose still counts as a command.
var markers = []struct {
	kind   CommandKind
	token  string
	hasArg bool
}{
	{CommandSave, "CMD: SAVE |", true},
	{CommandSearch, "CMD: SEARCH |", true},
	{CommandGoogle, "CMD: GOOGLE |", true},
	{CommandTime, "CMD: TIME", false},
}

const quoteChars = "\"'`"

// ParseCommand extracts the first command marker from a model reply.
func ParseCommand(raw string) Command {
	for _, m := range markers {
		idx := strings.Index(raw, m.token)
		if idx < 0 {
			continue
		}
		cmd := Command{Kind: m.kind}
		if m.hasArg {
			cmd.Argument = argument(raw[idx+len(m.token):])
		}
		return cmd
	}
	return Command{Kind: CommandNone}
}

func argument(rest string) string {
	if line, _, ok := strings.Cut(rest, "\n"); ok {
		rest = line
	}
	rest = strings.TrimSpace(rest)
	rest = strings.Trim(rest, quoteChars)
	return strings.TrimSpace(rest)
}
