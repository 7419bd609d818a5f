package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var keyclickCmd = &cobra.Command{
	Use:   "keyclick <target> <text>",
	Short: "Type text into a widget, key by key",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := connect(cmd)
		if err != nil {
			fmt.Printf("Error connecting to probe: %v\n", err)
			os.Exit(1)
		}
		defer c.Close()

		o, err := resolveTarget(cmd, c, args[0])
		if err != nil {
			fmt.Printf("Error resolving '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		typer, ok := o.(interface {
			KeyClick(ctx context.Context, text string) error
		})
		if !ok {
			fmt.Printf("'%s' does not accept key clicks\n", args[0])
			os.Exit(1)
		}
		if err := typer.KeyClick(cmd.Context(), args[1]); err != nil {
			fmt.Printf("Error typing into '%s': %v\n", args[0], err)
			os.Exit(1)
		}
	},
}

var shortcutCmd = &cobra.Command{
	Use:   "shortcut <target> <sequence>",
	Short: "Send a key sequence like 'Ctrl+S' to a widget",
	Long: `Sends a keyboard shortcut in the portable text form Qt's
QKeySequence::fromString accepts, for example "Ctrl+S" or "F5".`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := connect(cmd)
		if err != nil {
			fmt.Printf("Error connecting to probe: %v\n", err)
			os.Exit(1)
		}
		defer c.Close()

		o, err := resolveTarget(cmd, c, args[0])
		if err != nil {
			fmt.Printf("Error resolving '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		sender, ok := o.(interface {
			Shortcut(ctx context.Context, sequence string) error
		})
		if !ok {
			fmt.Printf("'%s' does not accept shortcuts\n", args[0])
			os.Exit(1)
		}
		if err := sender.Shortcut(cmd.Context(), args[1]); err != nil {
			fmt.Printf("Error sending shortcut to '%s': %v\n", args[0], err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(keyclickCmd)
	rootCmd.AddCommand(shortcutCmd)
}
