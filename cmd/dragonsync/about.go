package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dragon-display/dragonsync/internal/licenses"
)

func newAboutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "about",
		Short: "Show a short description",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "dragonsync: Google Drive sync for Dragon Display campaigns")
			fmt.Fprintln(out, "Read-only Drive access; media is copied into each campaign's local directory.")
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newLicensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "licenses",
		Short: "Show third-party license notices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := licenses.NoticesText()
			if text == "" {
				return fmt.Errorf("embedded THIRD_PARTY_NOTICES is empty")
			}
			_, err := cmd.OutOrStdout().Write([]byte(text))
			return err
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}
