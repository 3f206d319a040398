package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cpsdqs/prechoster"
	"github.com/cpsdqs/prechoster/internal/cli"
	"github.com/cpsdqs/prechoster/internal/presentation/tui"
	"github.com/cpsdqs/prechoster/pkg/domain"
)

var renderCmd = &cobra.Command{
	Use:   "render <document>",
	Short: "Evaluate a document and print the result",
	Long: `Evaluates a document file (JSON or YAML), a stored document id, or "-" for
JSON on stdin, and prints the output in the selected format.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := mustConfig(cmd)

		format, _ := cmd.Flags().GetString("format")
		mode, err := prechoster.ParseMode(format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		target, _ := cmd.Flags().GetString("target")
		preview, _ := cmd.Flags().GetBool("preview")
		style, _ := cmd.Flags().GetString("style")
		watch, _ := cmd.Flags().GetBool("watch")

		opts := cli.RenderOptions{
			Target:  domain.ModuleID(target),
			Mode:    mode,
			Preview: preview && cli.IsTerminal(os.Stdout),
			Style:   style,
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if watch {
			if !cli.IsFile(args[0]) {
				fmt.Fprintln(os.Stderr, "Error: --watch needs a document file")
				os.Exit(1)
			}
			if opts.Preview {
				tui.PrintBanner(os.Stderr)
			}
			ed := cli.NewEditor(domain.NewDocumentState(), logger)
			defer ed.Close()
			if err := cli.RunWatch(ctx, os.Stdout, os.Stderr, args[0], ed, opts, logger); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		state, err := cli.LoadDocument(ctx, args[0], os.Stdin, cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading document: %v\n", err)
			os.Exit(1)
		}

		ed := cli.NewEditor(state, logger)
		defer ed.Close()
		if err := cli.Render(ctx, os.Stdout, ed, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Render failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringP("target", "t", string(domain.OutputID), "Module id to evaluate")
	renderCmd.Flags().StringP("format", "f", "markdown", "Output format: markdown, html or values")
	renderCmd.Flags().BoolP("preview", "p", false, "Render markdown for the terminal when stdout is a tty")
	renderCmd.Flags().String("style", "auto", "Terminal preview style (auto, dark, light, notty)")
	renderCmd.Flags().BoolP("watch", "w", false, "Re-render whenever the document file changes")
}
