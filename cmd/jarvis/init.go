package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sandevgo/jarvis/internal/config"
	"github.com/sandevgo/jarvis/pkg/env"
	"github.com/sandevgo/jarvis/pkg/log"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the runtime directory and a starter .env file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()
		logger := log.FromCtx(ctx)

		runtimePath := config.GetRuntimePath()
		if err := os.MkdirAll(runtimePath, 0755); err != nil {
			return fmt.Errorf("failed to create runtime directory: %w", err)
		}

		envPath := filepath.Join(runtimePath, ".env")
		if _, err := os.Stat(envPath); err == nil && !initForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", envPath)
		}

		content, err := env.MarshalEnv(true,
			&config.AppConfig{RuntimePath: runtimePath},
			&config.MemoryConfig{},
			&config.SearchConfig{},
			&config.TelegramConfig{},
		)
		if err != nil {
			return err
		}

		if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", envPath, err)
		}

		logger.Info().Str("path", envPath).Msg("wrote starter configuration")
		fmt.Fprintf(cmd.OutOrStdout(), "Edit %s, then run 'jarvis start'.\n", envPath)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing .env")
	rootCmd.AddCommand(initCmd)
}
