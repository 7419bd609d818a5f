package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Ask the application to quit",
	Run: func(cmd *cobra.Command, args []string) {
		c, err := connect(cmd)
		if err != nil {
			fmt.Printf("Error connecting to probe: %v\n", err)
			os.Exit(1)
		}
		defer c.Close()

		if err := c.Quit(cmd.Context()); err != nil {
			fmt.Printf("Error quitting: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Application quit.")
	},
}

func init() {
	rootCmd.AddCommand(quitCmd)
}
