package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/qpilot"
	"github.com/aretw0/qpilot/internal/presentation/graph"
	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/widgets"
	"github.com/spf13/cobra"
)

// treeCmd represents the tree command
var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Dump the widget tree of the application",
	Long: `Lists every widget the application currently has, nested the way Qt
parents them. The default output is JSON; --format mermaid renders a
flowchart with the active window highlighted.`,
	Run: func(cmd *cobra.Command, args []string) {
		withProps, _ := cmd.Flags().GetBool("with-properties")
		format, _ := cmd.Flags().GetString("format")

		c, err := connect(cmd)
		if err != nil {
			fmt.Printf("Error connecting to probe: %v\n", err)
			os.Exit(1)
		}
		defer c.Close()

		tree, err := c.WidgetsList(cmd.Context(), withProps)
		if err != nil {
			fmt.Printf("Error listing widgets: %v\n", err)
			os.Exit(1)
		}

		switch format {
		case "json":
			data, err := json.MarshalIndent(tree, "", "  ")
			if err != nil {
				fmt.Printf("Error marshaling tree: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(data))
		case "mermaid":
			fmt.Print(graph.GenerateMermaid(tree, activeOverlay(cmd, c)))
		default:
			fmt.Printf("Unknown format: %s. Supported: json, mermaid\n", format)
			os.Exit(1)
		}
	},
}

// activeOverlay marks the active window in the rendered tree. The
// application may have none; the tree renders unmarked then.
func activeOverlay(cmd *cobra.Command, c *qpilot.Client) *graph.Overlay {
	o, err := c.ActiveWidget(cmd.Context(), domain.WindowAny, widgets.WithTimeout(500*time.Millisecond))
	if err != nil {
		return nil
	}
	return &graph.Overlay{ActivePath: o.AsObject().Path}
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().Bool("with-properties", false, "Include widget properties in the dump")
	treeCmd.Flags().StringP("format", "f", "json", "Output format: 'json' or 'mermaid'")
}
