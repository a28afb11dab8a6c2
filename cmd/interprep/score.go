package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ratuser/inter-prep-GenAi/internal/interview"
	"github.com/ratuser/inter-prep-GenAi/internal/observability"
)

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score [file]",
		Short: "Extract the interview score from feedback text",
		Long:  `Read final feedback from a file (or stdin) and print the score the recorder would store.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open feedback file: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			text, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read feedback: %w", err)
			}

			score, found := interview.ExtractScore(string(text))
			observability.NewPrinter(cmd.OutOrStdout()).PrintScore(score, found)
			return nil
		},
	}
}
