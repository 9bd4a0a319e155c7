package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"strings"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/pkg/log"
)

const sourceMCP = "mcp"

type Memory interface {
	Save(ctx context.Context, text, source string) (core.Fact, error)
	IndexQuery(ctx context.Context, text string, k int) core.Retrieval
	BulkIngest(ctx context.Context, sourceText, sourceTag string) (int, error)
	TopK() int
}

// Server exposes long-term memory as MCP tools over stdio.
type Server struct {
	mcp    *server.MCPServer
	memory Memory
	in     io.Reader
	out    io.Writer
	cancel context.CancelFunc
}

func New(memory Memory, in io.Reader, out io.Writer) *Server {
	s := &Server{
		mcp:    server.NewMCPServer(core.JarvisName, core.JarvisVersion, server.WithToolCapabilities(false)),
		memory: memory,
		in:     in,
		out:    out,
	}

	s.mcp.AddTool(mcpproto.NewTool("remember",
		mcpproto.WithDescription("Store a fact in Jarvis long-term memory."),
		mcpproto.WithString("text", mcpproto.Required(), mcpproto.Description("The fact to remember")),
		mcpproto.WithString("source", mcpproto.Description("Tag describing where the fact came from")),
	), s.remember)

	s.mcp.AddTool(mcpproto.NewTool("recall",
		mcpproto.WithDescription("Return the stored facts most similar to a query."),
		mcpproto.WithString("query", mcpproto.Required(), mcpproto.Description("What to look up")),
		mcpproto.WithNumber("k", mcpproto.Description("Number of results")),
	), s.recall)

	s.mcp.AddTool(mcpproto.NewTool("ingest",
		mcpproto.WithDescription("Split a document into chunks and index them."),
		mcpproto.WithString("text", mcpproto.Required(), mcpproto.Description("Document text")),
		mcpproto.WithString("source", mcpproto.Description("Tag stored with every chunk")),
	), s.ingest)

	return s
}

// Foreground ties the process lifetime to the stdio session.
func (s *Server) Foreground() {}

func (s *Server) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(log.WithComponent(ctx, "mcp"))
	logger := log.FromCtx(ctx)
	logger.Info().Msg("serving MCP over stdio")

	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(stdlog.New(logger, "", 0))

	if err := stdio.Listen(ctx, s.in, s.out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func (s *Server) remember(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	source := req.GetString("source", sourceMCP)

	fact, err := s.memory.Save(ctx, text, source)
	if err != nil {
		if errors.Is(err, core.ErrValidation) {
			return mcpproto.NewToolResultError("text is empty"), nil
		}
		log.FromCtx(ctx).Error().Err(err).Msg("mcp remember failed")
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	return mcpproto.NewToolResultText(fmt.Sprintf("saved %s", fact.ID)), nil
}

func (s *Server) recall(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	k := req.GetInt("k", s.memory.TopK())

	res := s.memory.IndexQuery(ctx, query, k)
	switch res.Status {
	case core.RetrievalUnavailable:
		return mcpproto.NewToolResultError("memory index is unavailable"), nil
	case core.RetrievalEmpty:
		return mcpproto.NewToolResultText("No matching facts."), nil
	}
	return mcpproto.NewToolResultText(strings.Join(res.Texts, "\n")), nil
}

func (s *Server) ingest(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	source := req.GetString("source", sourceMCP)

	n, err := s.memory.BulkIngest(ctx, text, source)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("mcp ingest failed")
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	return mcpproto.NewToolResultText(fmt.Sprintf("indexed %d chunk(s) from %s", n, source)), nil
}
