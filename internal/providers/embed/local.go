package embed

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/sandevgo/jarvis/internal/core"
)

const (
	ModelChargram = "jarvis-chargram-384-v1"
	ModelHash     = "jarvis-hash-256-v1"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_\-]+`)

// Chargram embeds text as hashed character trigrams plus whole-word tokens.
// It runs offline and is deterministic, which keeps memory queries stable.
type Chargram struct {
	dims int
}

func NewChargram() *Chargram {
	return &Chargram{dims: 384}
}

func (e *Chargram) ModelID() string { return ModelChargram }
func (e *Chargram) Dims() int       { return e.dims }

func (e *Chargram) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return vec, nil
	}

	window := []rune("#" + normalized + "#")
	for i := 0; i+3 <= len(window); i++ {
		vec[bucket(string(window[i:i+3]), e.dims)] += 1
	}
	for _, token := range tokenize(normalized) {
		vec[bucket("tok:"+token, e.dims)] += 1.25
	}

	Normalize(vec)
	return vec, nil
}

// Hash is a cheaper bag-of-words embedder with signed buckets.
type Hash struct {
	dims int
}

func NewHash() *Hash {
	return &Hash{dims: 256}
}

func (e *Hash) ModelID() string { return ModelHash }
func (e *Hash) Dims() int       { return e.dims }

func (e *Hash) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)
	if strings.TrimSpace(text) == "" {
		return vec, nil
	}

	for _, token := range tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()
		sign := float32(1)
		if sum&1 == 1 {
			sign = -1
		}
		vec[int(sum%uint64(e.dims))] += sign * float32(1+len(token)/8)
	}

	Normalize(vec)
	return vec, nil
}

func bucket(s string, dims int) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(dims))
}

func tokenize(text string) []string {
	text = strings.ToLower(text)
	matches := tokenPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return []string{text}
	}
	return matches
}

var (
	_ core.Embedder = (*Chargram)(nil)
	_ core.Embedder = (*Hash)(nil)
)
