package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/qpilot/pkg/wait"
	"github.com/spf13/cobra"
)

var waitCmd = &cobra.Command{
	Use:   "wait <target> <property> <value>",
	Short: "Wait until a widget property reaches a value",
	Long: `Polls the property until it equals the value or the timeout passes.
The value is parsed as JSON, falling back to a plain string. Exits
non-zero when the condition is never met, so scripts can chain on it.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		timeout, _ := cmd.Flags().GetDuration("timeout")

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

		start := time.Now()
		settled, err := o.AsObject().WaitForProperties(cmd.Context(),
			map[string]any{args[1]: parseValue(args[2])}, timeout, wait.DefaultInterval)
		if err != nil {
			fmt.Printf("Error waiting on '%s': %v\n", args[0], err)
			os.Exit(1)
		}
		if !settled {
			fmt.Printf("'%s' never reached %s=%s within %v\n", args[0], args[1], args[2], timeout)
			os.Exit(1)
		}
		fmt.Printf("Settled after %v\n", time.Since(start).Round(time.Millisecond))
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
}
