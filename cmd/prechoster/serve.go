package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cpsdqs/prechoster/internal/cli"
	"github.com/cpsdqs/prechoster/internal/presentation/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP rendering server",
	Long: `Serves stored documents over a JSON API: CRUD, rendering, graph export,
validation, change events over SSE and Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := mustConfig(cmd)
		port, _ := cmd.Flags().GetString("port")

		if cli.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		fmt.Printf("Starting prechoster server on :%s (%s store)\n", port, cfg.Store)
		if err := cli.Serve(ctx, cfg, ":"+port, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		if sig := ctx.Signal(); sig != nil {
			fmt.Printf("Server stopped gracefully (%v)\n", sig)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
