package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/jarvis/internal/transport/mcpserver"
	"github.com/sandevgo/jarvis/pkg/srv"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve long-term memory as MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// stdout carries the protocol; logs stay on stderr
		ctx, flushLog := setupLogger(ctx)
		defer flushLog()

		a, err := newMemoryApp(ctx)
		if err != nil {
			return err
		}

		services := []srv.Service{
			srv.NewCleanup(a.Close),
			mcpserver.New(a.memory, os.Stdin, os.Stdout),
		}

		wg := srv.StartServices(ctx, stop, services)
		srv.ShutdownServices(ctx, services)
		wg.Wait()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
