package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/qpilot/pkg/items"
	"github.com/aretw0/qpilot/pkg/widgets"
	"github.com/spf13/cobra"
)

var itemsCmd = &cobra.Command{
	Use:   "items <target>",
	Short: "List the model items of an item view",
	Long: `Dumps the items of a list, table or tree view as JSON. A named path
like "Documents/Taxes" narrows the output to one item, matched on the
cell values along the way.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		namedPath, _ := cmd.Flags().GetString("named-path")
		matchColumn, _ := cmd.Flags().GetInt("match-column")
		column, _ := cmd.Flags().GetInt("column")

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

		view, ok := o.(interface {
			Model(ctx context.Context) (*widgets.AbstractItemModel, error)
		})
		if !ok {
			fmt.Printf("'%s' is not an item view\n", args[0])
			os.Exit(1)
		}

		model, err := view.Model(cmd.Context())
		if err != nil {
			fmt.Printf("Error reading model: %v\n", err)
			os.Exit(1)
		}
		collection, err := model.Items(cmd.Context())
		if err != nil {
			fmt.Printf("Error reading items: %v\n", err)
			os.Exit(1)
		}

		var out any
		if namedPath != "" {
			item, err := collection.ItemByPath(namedPath, matchColumn, column)
			if err != nil {
				fmt.Printf("Error resolving named path '%s': %v\n", namedPath, err)
				os.Exit(1)
			}
			out = itemDump(item)
		} else {
			dumps := make([]map[string]any, 0, len(collection.Roots()))
			for _, item := range collection.Roots() {
				dumps = append(dumps, itemDump(item))
			}
			out = dumps
		}

		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling items: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	},
}

func itemDump(item *items.ModelItem) map[string]any {
	d := map[string]any{
		"row":    item.Row,
		"column": item.Column,
		"value":  item.Value,
	}
	if item.CheckState != "" {
		d["checkState"] = string(item.CheckState)
	}
	if item.ItemPath != "" {
		d["itemPath"] = item.ItemPath
	}
	if len(item.Children) > 0 {
		kids := make([]map[string]any, 0, len(item.Children))
		for _, child := range item.Children {
			kids = append(kids, itemDump(child))
		}
		d["children"] = kids
	}
	return d
}

func init() {
	rootCmd.AddCommand(itemsCmd)
	itemsCmd.Flags().String("named-path", "", "Slash separated cell values leading to one item")
	itemsCmd.Flags().Int("match-column", 0, "Column the named path matches against")
	itemsCmd.Flags().Int("column", 0, "Column of the item to return")
}
