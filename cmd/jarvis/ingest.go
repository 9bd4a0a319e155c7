package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sandevgo/jarvis/pkg/log"
	"github.com/spf13/cobra"
)

var (
	ingestFacts  bool
	ingestSource string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Index a document or re-index the fact log",
	Long: `Splits a text file into fixed-size chunks and adds them to long-term memory.
With --facts, every line of the fact log is indexed again instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()
		logger := log.FromCtx(ctx)

		if !ingestFacts && len(args) == 0 {
			return errors.New("a file path or --facts is required")
		}

		a, err := newMemoryApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if ingestFacts {
			n, err := a.memory.IngestFactLog(ctx)
			if err != nil {
				return fmt.Errorf("re-index fact log: %w", err)
			}
			logger.Info().Int("facts", n).Msg("fact log indexed")
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d fact(s).\n", n)
			return nil
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		source := ingestSource
		if source == "" {
			source = filepath.Base(args[0])
		}

		n, err := a.memory.BulkIngest(ctx, string(data), source)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", args[0], err)
		}
		logger.Info().Int("chunks", n).Str("source", source).Msg("document indexed")
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunk(s) from %s.\n", n, source)
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestFacts, "facts", false, "re-index every line of the fact log")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "source tag stored with each chunk (default: file name)")
	rootCmd.AddCommand(ingestCmd)
}
