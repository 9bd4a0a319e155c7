package core

import (
	"context"
	"time"
)

// FactLog is an append-only, human-readable sink of remembered facts.
type FactLog interface {
	Append(ctx context.Context, fact Fact) error
	ReadAll(ctx context.Context) ([]string, error)
}

type VectorIndex interface {
	// Provision creates the index if it is absent and waits until it is ready.
	// It must be idempotent.
	Provision(ctx context.Context) error
	Upsert(ctx context.Context, entry IndexEntry) error
	// Query ranks entries embedded by model against vector. An empty model
	// matches entries of any model.
	Query(ctx context.Context, model string, vector []float32, k int) ([]IndexMatch, error)
}

type IndexEntry struct {
	ID        string
	Content   string
	Source    string
	Model     string
	Embedding []float32
	CreatedAt time.Time
}

type IndexMatch struct {
	ID      string
	Content string
	Source  string
	Score   float64
}

type MessagesRepository interface {
	AddMessage(ctx context.Context, sessionID string, msg Message) error
	GetMessages(ctx context.Context, sessionID string) ([]Message, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type StoredMessage struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
