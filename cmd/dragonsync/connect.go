package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dragon-display/dragonsync/internal/credentials"
	"github.com/dragon-display/dragonsync/internal/logger"
	"github.com/dragon-display/dragonsync/internal/oauthflow"
)

type connectOptions struct {
	port      int
	noBrowser bool
	timeout   time.Duration
}

func newConnectCmd(opts *globalOptions) *cobra.Command {
	copts := connectOptions{}
	cmd := &cobra.Command{
		Use:   "connect <campaign>",
		Short: "Sign in to Google Drive for a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnectCmd(cmd, opts, &copts, args[0])
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.Flags().IntVar(&copts.port, "port", 0, "Loopback port for the OAuth redirect (0 picks a free port)")
	cmd.Flags().BoolVar(&copts.noBrowser, "no-browser", false, "Print the consent URL instead of opening a browser")
	cmd.Flags().DurationVar(&copts.timeout, "timeout", 5*time.Minute, "How long to wait for the browser sign-in")
	return cmd
}

func runConnectCmd(cmd *cobra.Command, opts *globalOptions, copts *connectOptions, name string) error {
	if copts.port < 0 || copts.port > 65535 {
		return fmt.Errorf("--port must be between 0 and 65535")
	}
	store, err := openStore(opts)
	if err != nil {
		return err
	}
	if _, err := store.MustGet(name); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	out := cmd.OutOrStdout()
	b := &oauthflow.Bootstrap{
		SecretDir: opts.secretDir,
		Addr:      fmt.Sprintf("localhost:%d", copts.port),
		NoBrowser: copts.noBrowser,
		Timeout:   copts.timeout,
		OnURL: func(consentURL string) {
			fmt.Fprintln(out, "Open this URL to allow Dragon Display to read your Google Drive:")
			fmt.Fprintf(out, "  %s\n", consentURL)
		},
	}
	tp, err := runConnect(ctx, b)
	if err != nil {
		return err
	}
	if err := credentials.Save(name, tp); err != nil {
		return err
	}
	logger.Info("Stored Drive tokens", "campaign", name)
	fmt.Fprintf(out, "Connected campaign %q to Google Drive.\n", name)
	return nil
}
