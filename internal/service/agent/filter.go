package agent

import (
	"strings"
	"unicode/utf8"
)

const DefaultMinFactLength = 10

// FactFilter decides whether a SAVE argument looks like a real fact.
type FactFilter struct {
	MinLength int
	// Placeholders are template tokens the model sometimes echoes verbatim.
	Placeholders []string
	// EchoTokens are matched case-insensitively and signal the model is
	// repeating instructions rather than stating a fact.
	EchoTokens []string
}

func DefaultFactFilter(minLength int) FactFilter {
	if minLength <= 0 {
		minLength = DefaultMinFactLength
	}
	return FactFilter{
		MinLength:    minLength,
		Placeholders: []string{"<fact>", "<query>"},
		EchoTokens:   []string{"command"},
	}
}

func (f FactFilter) Accept(text string) bool {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < f.MinLength {
		return false
	}
	for _, p := range f.Placeholders {
		if strings.Contains(text, p) {
			return false
		}
	}
	lower := strings.ToLower(text)
	for _, e := range f.EchoTokens {
		if strings.Contains(lower, strings.ToLower(e)) {
			return false
		}
	}
	return true
}
