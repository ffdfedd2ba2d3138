package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dragon-display/dragonsync/internal/credentials"
)

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Inspect or delete Drive tokens in the OS keychain",
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.AddCommand(newTokensStatusCmd(), newTokensDeleteCmd())
	return cmd
}

func newTokensStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <campaign>",
		Short: "Show whether tokens are stored (values are never printed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pair, ok, err := credentials.Get(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintf(out, "%s: Not Found (run 'dragonsync connect %s')\n", args[0], args[0])
				return nil
			}
			fmt.Fprintf(out, "%s: Found (source=Keychain, %s)\n", args[0], pair)
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newTokensDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <campaign>",
		Short: "Delete stored tokens from the keychain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirmer := newConfirmer()
			confirmer.Out = cmd.OutOrStdout()
			ok, err := confirmer.ConfirmRemoval(fmt.Sprintf("the Drive tokens of %q", args[0]), yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			if err := credentials.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted Drive tokens of %q from keychain.\n", args[0])
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}
