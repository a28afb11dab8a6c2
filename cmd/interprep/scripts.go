package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ratuser/inter-prep-GenAi/internal/interview"
	"github.com/ratuser/inter-prep-GenAi/internal/observability"
)

func newScriptsCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "scripts",
		Short: "Print the interview scripts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scripts, err := interview.DefaultScripts()
			if err != nil {
				return err
			}

			modes := scripts.Modes()
			if mode != "" {
				m := interview.Mode(mode)
				if m != interview.ModeTechnical && m != interview.ModeNonTechnical {
					return fmt.Errorf("unknown mode %q (want %q or %q)", mode, interview.ModeTechnical, interview.ModeNonTechnical)
				}
				modes = []interview.Mode{m}
			}

			printer := observability.NewPrinter(cmd.OutOrStdout())
			for _, m := range modes {
				printer.PrintScript(scripts.Script(m))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "Only print this mode (technical or non-technical)")
	return cmd
}
