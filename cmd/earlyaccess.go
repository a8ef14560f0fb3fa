package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newEarlyAccessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "early-access <email>",
		Short: "Register an email for early access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.client().RegisterEarlyAccess(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if msg == "" {
				msg = "You're on the list!"
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
