package main

import (
	"errors"
	"os"
	"os/signal"

	"github.com/sandevgo/jarvis/internal/transport/cli"
	"github.com/sandevgo/jarvis/pkg/log"
	"github.com/sandevgo/jarvis/pkg/srv"
	"github.com/spf13/cobra"
)

var speech bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Jarvis services",
	Long:  `Initializes and starts all configured transports (CLI, Telegram, HTTP API).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting jarvis")

		a, err := newApp(ctx)
		if err != nil {
			return err
		}

		services := []srv.Service{srv.NewCleanup(a.Close)}

		transports, err := initBackgroundTransports(ctx, a)
		if err != nil {
			_ = a.Close()
			return err
		}
		services = append(services, transports...)

		if a.cfg.EnableCLI {
			rl, err := cli.NewReadLine(a.cfg, a.agent, a.router, speech)
			if err != nil {
				_ = a.Close()
				return err
			}
			services = append(services, rl)
		}

		if len(services) == 1 {
			_ = a.Close()
			return errors.New("no transport enabled: set ENABLE_CLI, ENABLE_TELEGRAM or ENABLE_HTTP")
		}

		// Start services
		wg := srv.StartServices(ctx, stop, services)

		// Wait for shutdown signal
		srv.ShutdownServices(ctx, services)
		wg.Wait()
		logger.Info().Msg("jarvis has been shut down gracefully")

		return nil
	},
}

func init() {
	startCmd.Flags().BoolVar(&speech, "speech", false, "print replies as plain speech-ready text")
	rootCmd.AddCommand(startCmd)
}
