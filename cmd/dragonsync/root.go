package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dragon-display/dragonsync/internal/cleanup"
	"github.com/dragon-display/dragonsync/internal/drivesync"
	"github.com/dragon-display/dragonsync/internal/files"
	"github.com/dragon-display/dragonsync/internal/logger"
	"github.com/dragon-display/dragonsync/internal/version"
)

type globalOptions struct {
	secretDir   string
	configPath  string
	logFilePath string
	debug       bool
	qps         float64
}

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "dragonsync",
		Short: "Google Drive sync for Dragon Display campaigns",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(opts)
		},
		SilenceUsage: true,
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	addGlobalFlags(cmd.PersistentFlags(), opts)

	cmd.AddCommand(
		newCampaignCmd(opts),
		newConnectCmd(opts),
		newFoldersCmd(opts),
		newSyncCmd(opts),
		newTokensCmd(),
		newAboutCmd(),
		newLicensesCmd(),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}

	return cmd
}

func addGlobalFlags(fs *pflag.FlagSet, opts *globalOptions) {
	fs.StringVar(&opts.secretDir, "secret-dir", ".", "Directory containing client_secret.json")
	fs.StringVar(&opts.configPath, "config", "", "Campaign file (default <user config dir>/dragon-display/campaigns.toml)")
	fs.StringVar(&opts.logFilePath, "log-file", "", "Path to save machine-readable JSONL logs")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.Float64Var(&opts.qps, "qps", drivesync.DefaultQPS, "Maximum Drive requests per second (0 disables throttling)")
}

func setupLogging(opts *globalOptions) error {
	logLevel := logger.LevelInfo
	if opts.debug {
		logLevel = logger.LevelDebug
	}
	var logFileW io.Writer
	if opts.logFilePath != "" {
		if err := files.RejectSymlinkPath(opts.logFilePath); err != nil {
			return err
		}
		f, err := os.OpenFile(opts.logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register(f.Close)
		logFileW = f
	}
	logger.Init(logLevel, logFileW)
	return nil
}
