package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cpsdqs/prechoster"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of prechoster",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("prechoster version %s\n", strings.TrimSpace(prechoster.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
