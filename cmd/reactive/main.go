package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/reactive/internal/config"
	"github.com/vango-dev/reactive/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// configPath is the --config flag shared by every command.
var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reactive",
		Short: "Fine-grained reactive runtime tools",
		Long: `reactive runs and serves a synchronous signal/effect/memo runtime.

Writing a signal re-runs every effect that read it before the write
returns. Memos are signals kept current by an owned effect.

  • demo      scripted walkthroughs of the runtime semantics
  • serve     a live counter over HTTP and WebSocket
  • snapshot  save and load signal state to a file or S3
  • config    create or inspect reactive.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to reactive.json or reactive.yaml (default: search from the working directory)")

	rootCmd.AddCommand(
		demoCmd(),
		serveCmd(),
		snapshotCmd(),
		configCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads the --config file, or the nearest config file above
// the working directory. With neither, the defaults are used.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
		if errors.HasCode(err, "C141") {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
