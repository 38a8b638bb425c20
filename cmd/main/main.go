package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

const defaultConfigPath = "routepages.json"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "routepages",
		Short:         "routepages generates static route landing pages from a CSV file and an HTML template.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "Path to the JSON config file.")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error). Overrides the config file.")

	root.AddCommand(
		newGenerateCmd(opts),
		newHistoryCmd(opts),
		newInitCmd(opts),
	)
	return root
}

// load reads the config file and applies the shared flag overrides.
func (o *rootOptions) load() (*Config, error) {
	config, err := LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.logLevel != "" {
		config.LogLevel = o.logLevel
	}
	return config, nil
}

// commandLogger writes diagnostics to stderr so stdout only carries command output.
func commandLogger(cmd *cobra.Command, config *Config) *slog.Logger {
	return newLogger(config.LogLevel, cmd.ErrOrStderr())
}
