package main

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cpsdqs/prechoster/internal/cli"
	"github.com/cpsdqs/prechoster/internal/presentation/graph"
	"github.com/cpsdqs/prechoster/internal/runtime"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <document>",
	Short: "Export the module graph as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph LR) of the document's modules and edges.
With --eval the document is evaluated first and the diagram marks which
modules ran and which one failed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := mustConfig(cmd)
		ctx := cmd.Context()

		state, err := cli.LoadDocument(ctx, args[0], os.Stdin, cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading document: %v\n", err)
			os.Exit(1)
		}

		var overlay *graph.GraphOverlay
		if eval, _ := cmd.Flags().GetBool("eval"); eval {
			ed := cli.NewEditor(state, logger)
			res := ed.Render(ctx, runtime.ModeValues)
			overlay = &graph.GraphOverlay{Evaluated: slices.Sorted(maps.Keys(res.Nodes))}
			var evalErr *runtime.EvalError
			if errors.As(res.Err(), &evalErr) {
				overlay.Failed = evalErr.ModuleID
			}
			res.Drop()
		}

		fmt.Print(graph.GenerateMermaid(state, overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("eval", false, "Evaluate the document and mark the modules that ran")
}
