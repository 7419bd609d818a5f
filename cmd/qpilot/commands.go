package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/qpilot/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the commands the probe understands",
	Run: func(cmd *cobra.Command, args []string) {
		c, err := connect(cmd)
		if err != nil {
			fmt.Printf("Error connecting to probe: %v\n", err)
			os.Exit(1)
		}
		defer c.Close()

		commands, err := c.Commands(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing commands: %v\n", err)
			os.Exit(1)
		}

		var md strings.Builder
		md.WriteString("# Probe Commands\n\n")
		for _, name := range commands {
			md.WriteString("- `" + name + "`\n")
		}

		// Markdown rendering is for eyes; pipes get the raw list.
		if term.IsTerminal(int(os.Stdout.Fd())) {
			render := tui.NewRenderer()
			if out, err := render(md.String()); err == nil {
				fmt.Print(out)
				return
			}
		}
		for _, name := range commands {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}
