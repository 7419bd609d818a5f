package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var propertiesCmd = &cobra.Command{
	Use:   "properties <target>",
	Short: "Read the Qt properties of a widget",
	Args:  cobra.ExactArgs(1),
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

		props, err := o.AsObject().Properties(cmd.Context())
		if err != nil {
			fmt.Printf("Error reading properties: %v\n", err)
			os.Exit(1)
		}

		// Pretty print JSON
		data, err := json.MarshalIndent(props, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling properties: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	},
}

var setCmd = &cobra.Command{
	Use:   "set <target> <property> <value>",
	Short: "Set a Qt property on a widget",
	Long: `Sets one property. The value is parsed as JSON, so numbers and
booleans keep their type; anything that does not parse is sent as a
plain string.`,
	Args: cobra.ExactArgs(3),
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

		if err := o.AsObject().SetProperty(cmd.Context(), args[1], parseValue(args[2])); err != nil {
			fmt.Printf("Error setting '%s': %v\n", args[1], err)
			os.Exit(1)
		}
	},
}

// parseValue keeps JSON types and falls back to the raw string.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

func init() {
	rootCmd.AddCommand(propertiesCmd)
	rootCmd.AddCommand(setCmd)
}
