package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/remote"
	"github.com/aretw0/qpilot/pkg/widgets"
	"github.com/spf13/cobra"
)

var clickCmd = &cobra.Command{
	Use:   "click <target>",
	Short: "Click a widget",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		button, _ := cmd.Flags().GetString("button")
		double, _ := cmd.Flags().GetBool("double")

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

		if err := clickObject(cmd.Context(), o, domain.MouseButton(button), double); err != nil {
			fmt.Printf("Error clicking '%s': %v\n", args[0], err)
			os.Exit(1)
		}
	},
}

// clickObject clicks whatever variant the lookup produced. Quick items
// take neither a button nor a double click.
func clickObject(ctx context.Context, o remote.Object, button domain.MouseButton, double bool) error {
	switch t := o.(type) {
	case *widgets.QuickItem:
		return t.Click(ctx)
	case interface {
		Click(ctx context.Context, button domain.MouseButton, opts ...widgets.Option) error
		DoubleClick(ctx context.Context, opts ...widgets.Option) error
	}:
		if double {
			return t.DoubleClick(ctx)
		}
		return t.Click(ctx, button)
	}
	return fmt.Errorf("%s is not clickable", o.AsObject().Path)
}

func init() {
	rootCmd.AddCommand(clickCmd)
	clickCmd.Flags().StringP("button", "b", "left", "Mouse button: 'left', 'right' or 'middle'")
	clickCmd.Flags().Bool("double", false, "Double click instead of a single click")
}
