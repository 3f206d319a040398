package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cpsdqs/prechoster/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "prechoster",
	Short: "Prechoster evaluates module graphs into rich posts",
	Long: `Prechoster composes posts out of small modules (text, templates, markdown,
stylesheets) wired into a graph, and renders whatever reaches the output
as markdown or HTML.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cli.AddFlags(rootCmd)
}

// mustConfig resolves the configuration or exits.
func mustConfig(cmd *cobra.Command) (cli.Config, *slog.Logger) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	return cfg, cfg.Logger()
}

// mustBackend opens the configured store or exits.
func mustBackend(cmd *cobra.Command) (*cli.Backend, *slog.Logger) {
	cfg, logger := mustConfig(cmd)
	backend, err := cli.OpenBackend(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s store: %v\n", cfg.Store, err)
		os.Exit(1)
	}
	return backend, logger
}
