package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dragon-display/dragonsync/internal/logger"
)

type syncOptions struct {
	folderID string
	dir      string
}

func newSyncCmd(opts *globalOptions) *cobra.Command {
	sopts := syncOptions{}
	cmd := &cobra.Command{
		Use:   "sync <campaign>",
		Short: "Download the campaign's Drive folder into its local directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts, &sopts, args[0])
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&sopts.folderID, "folder", "", "Drive folder id (default: the campaign's selected folder)")
	cmd.Flags().StringVar(&sopts.dir, "dir", "", "Local directory (default: the campaign's directory)")
	return cmd
}

func runSync(cmd *cobra.Command, opts *globalOptions, sopts *syncOptions, name string) error {
	s, err := openSession(opts, name)
	if err != nil {
		return err
	}
	folderID := sopts.folderID
	if folderID == "" {
		folderID = s.campaign.SyncFolderID
	}
	if folderID == "" {
		return fmt.Errorf("campaign %q has no sync folder: run 'dragonsync campaign select-folder %s <folder-id>'", name, name)
	}
	dir := sopts.dir
	if dir == "" {
		dir = s.campaign.Dir
	}

	client, err := newSyncClient(opts)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	bar, progress := newProgressBar(cmd.ErrOrStderr(), "Syncing")
	defer bar.Exit()

	res, err := client.Synchronize(ctx, s.tokens, folderID, dir, progress)
	if err := s.finish(res.UpdatedTokens, err); err != nil {
		return err
	}
	_ = bar.Finish()

	s.campaign.FailedFiles = res.FailedFiles
	s.campaign.LastSync = time.Now().UTC()
	if err := s.store.Put(s.campaign); err != nil {
		return err
	}
	if err := s.store.Save(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Downloaded %d, unchanged %d, failed %d.\n", res.Downloaded, res.Skipped, len(res.FailedFiles))
	if len(res.FailedFiles) > 0 {
		logger.Warn("Some files could not be downloaded", "campaign", name, "failed", len(res.FailedFiles))
		fmt.Fprintln(out, "Warning: these files could not be downloaded:")
		for _, f := range res.FailedFiles {
			fmt.Fprintf(out, "  - %s\n", f)
		}
	}
	return nil
}
