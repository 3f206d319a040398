package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cpsdqs/prechoster/internal/cli"
	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/schema"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage stored documents",
	Long:  `List, inspect, import, export and remove documents in the configured store.`,
}

var docLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored documents",
	Run: func(cmd *cobra.Command, args []string) {
		backend, _ := mustBackend(cmd)
		defer backend.Close()

		ids, err := backend.Store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing documents: %v\n", err)
			os.Exit(1)
		}
		if len(ids) == 0 {
			fmt.Println("No documents found.")
			return
		}

		fmt.Println("Documents:")
		for _, id := range ids {
			fmt.Println("- " + id)
		}
	},
}

var docInspectCmd = &cobra.Command{
	Use:   "inspect <id>",
	Short: "Print a stored document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		backend, _ := mustBackend(cmd)
		defer backend.Close()

		state, err := backend.Store.Load(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("Error loading document '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		format := schema.FormatJSON
		if yaml, _ := cmd.Flags().GetBool("yaml"); yaml {
			format = schema.FormatYAML
		}
		if err := schema.Encode(os.Stdout, state, format); err != nil {
			fmt.Printf("Error encoding document: %v\n", err)
			os.Exit(1)
		}
	},
}

var docImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store a document file",
	Long:  `Reads a JSON or YAML document file and saves it under --id, or the file's base name.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		state, err := cli.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading document: %v\n", err)
			os.Exit(1)
		}

		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			base := filepath.Base(args[0])
			id = strings.TrimSuffix(base, filepath.Ext(base))
		}
		if fresh, _ := cmd.Flags().GetBool("fresh-ids"); fresh {
			state, _ = schema.Reassign(state, domain.RandomIDs)
		}

		backend, logger := mustBackend(cmd)
		defer backend.Close()

		if err := backend.Store.Save(cmd.Context(), id, state); err != nil {
			fmt.Printf("Error saving document '%s': %v\n", id, err)
			os.Exit(1)
		}
		logger.Info("document imported", "id", id, "modules", len(state.Modules))
		fmt.Printf("Imported '%s' (%d modules).\n", id, len(state.Modules))
	},
}

var docExportCmd = &cobra.Command{
	Use:   "export <id> <file>",
	Short: "Write a stored document to a file",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		backend, _ := mustBackend(cmd)
		defer backend.Close()

		state, err := backend.Store.Load(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("Error loading document '%s': %v\n", args[0], err)
			os.Exit(1)
		}
		if err := cli.WriteFile(args[1], state); err != nil {
			fmt.Printf("Error writing %s: %v\n", args[1], err)
			os.Exit(1)
		}
		fmt.Printf("Exported '%s' to %s.\n", args[0], args[1])
	},
}

var docRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a stored document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		backend, _ := mustBackend(cmd)
		defer backend.Close()

		if err := backend.Store.Delete(cmd.Context(), args[0]); err != nil {
			fmt.Printf("Error removing document '%s': %v\n", args[0], err)
			os.Exit(1)
		}
		fmt.Printf("Document '%s' removed.\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(docCmd)
	docCmd.AddCommand(docLsCmd, docInspectCmd, docImportCmd, docExportCmd, docRmCmd)

	docInspectCmd.Flags().Bool("yaml", false, "Print as YAML instead of JSON")
	docImportCmd.Flags().String("id", "", "Document id (default: file base name)")
	docImportCmd.Flags().Bool("fresh-ids", false, "Give every module a new id")
}
