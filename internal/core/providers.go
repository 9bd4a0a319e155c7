package core

import "context"

// AIProvider is a stateless chat model: all context is passed in on every call.
type AIProvider interface {
	Chat(ctx context.Context, history []Message) (Message, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dims() int
	ModelID() string
}

// WebSearcher returns a single text snippet for a query, or "" when nothing was found.
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

type Clock interface {
	Now() string
}
