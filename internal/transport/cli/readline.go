package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/jarvis/internal/config"
	"github.com/sandevgo/jarvis/internal/core"
	"github.com/sandevgo/jarvis/pkg/conv"
	"github.com/sandevgo/jarvis/pkg/log"
)

const (
	defaultSessionID = "cli-local"
	exitWord         = "exit"
)

type ReadLine struct {
	agent  core.Agent
	router core.CmdRouter
	rl     *readline.Instance
	speech bool
}

func NewReadLine(cfg *config.AppConfig, agent core.Agent, router core.CmdRouter, speech bool) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.GetRuntimePath(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     cfg.GetHistoryFilePath(),
		InterruptPrompt: "^C",
		EOFPrompt:       exitWord,
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		agent:  agent,
		router: router,
		rl:     rl,
		speech: speech,
	}, nil
}

// Foreground marks the prompt as the process owner: closing it stops jarvis.
func (r *ReadLine) Foreground() {}

func (r *ReadLine) Start(ctx context.Context) error {
	ctx = log.WithComponent(ctx, "cli")
	logger := log.FromCtx(ctx)
	logger.Info().Msg("ReadLine chat started. Type 'exit' to quit.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if strings.EqualFold(line, exitWord) {
			return nil
		}
		if line == "" {
			continue
		}

		r.handle(ctx, r.rl.Stdout(), line)
	}
}

func (r *ReadLine) handle(ctx context.Context, out io.Writer, line string) {
	if r.router != nil {
		if reply, ok := r.router.Execute(ctx, defaultSessionID, line); ok {
			fmt.Fprintf(out, "%s\n", reply)
			return
		}
	}

	reply, err := r.agent.Run(ctx, defaultSessionID, line)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("agent run failed")
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	if r.speech {
		reply = conv.MarkdownToSpeech(reply)
	}
	fmt.Fprintf(out, "%s\n", reply)
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
