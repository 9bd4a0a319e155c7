package core

import "time"

const (
	JarvisName          = "Jarvis"
	JarvisUserAgent     = "Jarvis-Agent/0.1"
	JarvisRepositoryURL = "https://github.com/sandevgo/jarvis"
	JarvisVersion       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Fact is a short statement persisted to long-term memory.
type Fact struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type RetrievalStatus int

const (
	// RetrievalEmpty means the index answered but nothing matched.
	RetrievalEmpty RetrievalStatus = iota
	RetrievalFound
	// RetrievalUnavailable means the index could not be queried at all.
	RetrievalUnavailable
)

func (s RetrievalStatus) String() string {
	switch s {
	case RetrievalFound:
		return "found"
	case RetrievalUnavailable:
		return "unavailable"
	default:
		return "empty"
	}
}

// Retrieval is the ranked result of a memory query, most similar first.
type Retrieval struct {
	Texts  []string
	Status RetrievalStatus
}
