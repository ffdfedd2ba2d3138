package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dragon-display/dragonsync/internal/gdrive"
)

type treeOptions struct {
	rootID     string
	maxDepth   int
	maxFolders int
}

func newFoldersCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Count or list the campaign account's Drive folders",
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.AddCommand(newFoldersCountCmd(opts), newFoldersTreeCmd(opts))
	return cmd
}

func newFoldersCountCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count <campaign>",
		Short: "Count every folder in the connected Drive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts, args[0])
			if err != nil {
				return err
			}
			client, err := newSyncClient(opts)
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			n, tp, err := client.CountFolders(ctx, s.tokens)
			if err := s.finish(tp, err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d folders\n", n)
			return nil
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newFoldersTreeCmd(opts *globalOptions) *cobra.Command {
	topts := treeOptions{}
	cmd := &cobra.Command{
		Use:   "tree <campaign>",
		Short: "Print the Drive folder tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFoldersTree(cmd, opts, &topts, args[0])
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().StringVar(&topts.rootID, "root", gdrive.RootID, "Folder id to start from")
	cmd.Flags().IntVar(&topts.maxDepth, "max-depth", 0, "Maximum folder depth (0 uses the default)")
	cmd.Flags().IntVar(&topts.maxFolders, "max-folders", 0, "Maximum number of folders (0 uses the default)")
	return cmd
}

func runFoldersTree(cmd *cobra.Command, opts *globalOptions, topts *treeOptions, name string) error {
	s, err := openSession(opts, name)
	if err != nil {
		return err
	}
	client, err := newSyncClient(opts)
	if err != nil {
		return err
	}
	client.SetLimits(topts.maxDepth, topts.maxFolders)

	ctx, stop := signalContext()
	defer stop()

	bar, progress := newProgressBar(cmd.ErrOrStderr(), "Discovering folders")
	defer bar.Exit()

	total, tp, err := client.CountFolders(ctx, s.tokens)
	if err := s.finish(tp, err); err != nil {
		return err
	}
	bar.ChangeMax(total)

	tree, tp, err := client.Discover(ctx, s.tokens, topts.rootID, progress)
	if err := s.finish(tp, err); err != nil {
		return err
	}
	_ = bar.Finish()

	if topts.rootID == s.campaign.SyncFolderID && s.campaign.SyncFolderName != "" {
		tree.Names[tree.RootID] = s.campaign.SyncFolderName
	}
	out := cmd.OutOrStdout()
	err = tree.Walk(func(id, name string, depth int) error {
		marker := ""
		if id == s.campaign.SyncFolderID {
			marker = " *"
		}
		_, err := fmt.Fprintf(out, "%s%s  [%s]%s\n", strings.Repeat("  ", depth), name, id, marker)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d folders\n", tree.Len())
	return nil
}
