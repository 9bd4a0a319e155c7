package main

import (
	"fmt"
	"strings"

	"github.com/sandevgo/jarvis/internal/service/ui"
	"github.com/sandevgo/jarvis/pkg/conv"
	"github.com/sandevgo/jarvis/pkg/log"
	"github.com/spf13/cobra"
)

var askSession string

var askCmd = &cobra.Command{
	Use:           "ask <utterance>",
	Short:         "Run a single turn and print the reply",
	Args:          cobra.MinimumNArgs(1),
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		utterance := strings.Join(args, " ")
		turn, err := a.agent.RunTurn(ctx, askSession, utterance)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.ErrorStyle.Render("Error: "+err.Error()))
			return err
		}

		log.FromCtx(ctx).Debug().
			Str("command", turn.Command.Kind.String()).
			Int("model_calls", turn.ModelCalls).
			Str("retrieval", turn.Retrieval.Status.String()).
			Msg("turn finished")

		reply := turn.Reply
		if speech {
			reply = conv.MarkdownToSpeech(reply)
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "cli-ask", "session id to continue")
	askCmd.Flags().BoolVar(&speech, "speech", false, "print the reply as plain speech-ready text")
	rootCmd.AddCommand(askCmd)
}
