package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cpsdqs/prechoster/internal/cli"
	"github.com/cpsdqs/prechoster/internal/validator"
	"github.com/cpsdqs/prechoster/pkg/adapters/memory"
	"github.com/cpsdqs/prechoster/pkg/plugin"
	"github.com/cpsdqs/prechoster/pkg/plugins"
)

var validateCmd = &cobra.Command{
	Use:   "validate <document>",
	Short: "Check a document for consistency",
	Long: `Reports unknown plugin kinds, dangling edges, cycles, modules that cannot
take the inputs sent to them, and modules that never reach the output.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := mustConfig(cmd)
		ctx := cmd.Context()

		state, err := cli.LoadDocument(ctx, args[0], os.Stdin, cfg, logger)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}

		registry := plugin.NewRegistry(plugin.WithLogger(logger))
		plugins.RegisterBuiltins(registry, memory.NewBlobStore())

		report := validator.ValidateDocument(ctx, state, registry)
		for _, w := range report.Warnings() {
			fmt.Printf("warning: %s\n", w)
		}
		if err := report.Err(); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Document is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
