package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dragon-display/dragonsync/internal/campaign"
	"github.com/dragon-display/dragonsync/internal/credentials"
)

func newCampaignCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Manage campaigns and their sync folders",
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.AddCommand(
		newCampaignAddCmd(opts),
		newCampaignListCmd(opts),
		newCampaignRemoveCmd(opts),
		newCampaignSelectFolderCmd(opts),
	)
	return cmd
}

func newCampaignAddCmd(opts *globalOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "add <name> --dir <path>",
		Short: "Register a campaign and its local media directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			name := args[0]
			if _, exists := store.Get(name); exists {
				return fmt.Errorf("campaign %q already exists", name)
			}
			if strings.TrimSpace(dir) == "" {
				return fmt.Errorf("--dir is required")
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolve campaign directory: %w", err)
			}
			if err := store.Put(campaign.Campaign{Name: name, Dir: abs}); err != nil {
				return err
			}
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added campaign %q (%s).\n", name, abs)
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&dir, "dir", "", "Local directory for the campaign's media")
	return cmd
}

func newCampaignListCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List campaigns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			list := store.List()
			if len(list) == 0 {
				fmt.Fprintln(out, "No campaigns. Add one with 'dragonsync campaign add <name> --dir <path>'.")
				return nil
			}
			for _, c := range list {
				folder := "(no sync folder)"
				if c.SyncFolderID != "" {
					folder = fmt.Sprintf("%s [%s]", c.SyncFolderName, c.SyncFolderID)
				}
				connected := "not connected"
				if credentials.GetStatus(c.Name) {
					connected = "connected"
				}
				fmt.Fprintf(out, "  %-24s %-13s %s -> %s\n", c.Name, connected, folder, c.Dir)
				if !c.LastSync.IsZero() {
					fmt.Fprintf(out, "  %-24s last sync %s, %d failed\n", "", c.LastSync.Local().Format("2006-01-02 15:04"), len(c.FailedFiles))
				}
			}
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newCampaignRemoveCmd(opts *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a campaign and its stored tokens (local files are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			name := args[0]
			if _, err := store.MustGet(name); err != nil {
				return err
			}
			confirmer := newConfirmer()
			confirmer.Out = cmd.OutOrStdout()
			ok, err := confirmer.ConfirmRemoval(fmt.Sprintf("campaign %q", name), yes)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			store.Remove(name)
			if err := store.Save(); err != nil {
				return err
			}
			if err := credentials.Delete(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed campaign %q.\n", name)
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Remove without asking")
	return cmd
}

func newCampaignSelectFolderCmd(opts *globalOptions) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "select-folder <name> <folder-id>",
		Short: "Choose the Drive folder a campaign syncs from",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			c, err := store.MustGet(args[0])
			if err != nil {
				return err
			}
			folderID := strings.TrimSpace(args[1])
			if folderID == "" {
				return fmt.Errorf("folder id is empty")
			}
			if label == "" {
				label = folderID
			}
			if c.SyncFolderID != folderID {
				c.FailedFiles = nil
			}
			c.SyncFolderID = folderID
			c.SyncFolderName = label
			if err := store.Put(c); err != nil {
				return err
			}
			if err := store.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Campaign %q now syncs from %s [%s].\n", c.Name, label, folderID)
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&label, "name", "", "Display name for the folder (default: the folder id)")
	return cmd
}
