package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/qpilot"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of qpilot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("qpilot version %s\n", strings.TrimSpace(qpilot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
