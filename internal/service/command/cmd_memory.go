package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandevgo/jarvis/internal/core"
)

type MemoryBackend interface {
	IndexQuery(ctx context.Context, text string, k int) core.Retrieval
	BulkIngest(ctx context.Context, sourceText, sourceTag string) (int, error)
	IngestFactLog(ctx context.Context) (int, error)
	TopK() int
}

// RecallCommand queries long-term memory directly, bypassing the model.
type RecallCommand struct {
	memory    MemoryBackend
	formatter *ResponseFormatter
}

func NewRecallCommand(memory MemoryBackend) *RecallCommand {
	return &RecallCommand{memory: memory, formatter: NewResponseFormatter()}
}

func (c *RecallCommand) Name() string {
	return "recall"
}

func (c *RecallCommand) Description() string {
	return "Search long-term memory"
}

func (c *RecallCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Usage("/recall <query>"),
			c.formatter.Examples([]string{"/recall sister name"}),
		), nil
	}

	r := c.memory.IndexQuery(ctx, strings.Join(args, " "), c.memory.TopK())
	switch r.Status {
	case core.RetrievalUnavailable:
		return "", fmt.Errorf("memory index is unavailable")
	case core.RetrievalEmpty:
		return c.formatter.Combine(
			c.formatter.Info("Memory"),
			c.formatter.Label("Status", "Nothing relevant found."),
		), nil
	}

	return c.formatter.Combine(
		c.formatter.Info("Memory"),
		c.formatter.Label("Matches", fmt.Sprintf("%d", len(r.Texts))),
		"\n",
		c.formatter.List(r.Texts),
	), nil
}

// IngestCommand loads a text file, or the fact log, into the vector index.
type IngestCommand struct {
	memory    MemoryBackend
	formatter *ResponseFormatter
}

func NewIngestCommand(memory MemoryBackend) *IngestCommand {
	return &IngestCommand{memory: memory, formatter: NewResponseFormatter()}
}

func (c *IngestCommand) Name() string {
	return "ingest"
}

func (c *IngestCommand) Description() string {
	return "Index a text file or the fact log"
}

func (c *IngestCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Usage("/ingest <path> | /ingest facts"),
			c.formatter.Examples([]string{"/ingest ~/notes/manual.txt", "/ingest facts"}),
			c.formatter.Tip("use /ingest facts after editing the fact log by hand."),
		), nil
	}

	var (
		n      int
		err    error
		source string
	)
	if args[0] == "facts" {
		source = "fact log"
		n, err = c.memory.IngestFactLog(ctx)
	} else {
		path := expandHome(strings.Join(args, " "))
		source = filepath.Base(path)

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, readErr)
		}
		n, err = c.memory.BulkIngest(ctx, string(data), source)
	}
	if err != nil {
		return "", fmt.Errorf("ingest failed after %d chunks: %w", n, err)
	}

	return c.formatter.Success(fmt.Sprintf("Indexed %d chunks from %s", n, source)), nil
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
