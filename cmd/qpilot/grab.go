package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/qpilot"
	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/spf13/cobra"
)

var grabCmd = &cobra.Command{
	Use:   "grab [target]",
	Short: "Screenshot the screen or a single widget",
	Long: `Captures the primary screen, or just one widget when a target is
given, and writes the image to a file.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")

		c, err := connect(cmd)
		if err != nil {
			fmt.Printf("Error connecting to probe: %v\n", err)
			os.Exit(1)
		}
		defer c.Close()

		var img *domain.Image
		if len(args) == 0 {
			img, err = c.Grab(cmd.Context(), format)
		} else {
			img, err = grabTarget(cmd, c, args[0], format)
		}
		if err != nil {
			fmt.Printf("Error grabbing: %v\n", err)
			os.Exit(1)
		}

		if err := os.WriteFile(output, img.Data, 0o644); err != nil {
			fmt.Printf("Error writing '%s': %v\n", output, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d bytes (%s) to %s\n", len(img.Data), img.Format, output)
	},
}

func grabTarget(cmd *cobra.Command, c *qpilot.Client, target, format string) (*domain.Image, error) {
	o, err := resolveTarget(cmd, c, target)
	if err != nil {
		return nil, err
	}
	grabber, ok := o.(interface {
		Grab(ctx context.Context, format string) (*domain.Image, error)
	})
	if !ok {
		return nil, fmt.Errorf("'%s' cannot be grabbed", target)
	}
	return grabber.Grab(cmd.Context(), format)
}

func init() {
	rootCmd.AddCommand(grabCmd)
	grabCmd.Flags().StringP("output", "o", "screenshot.png", "File to write the image to")
	grabCmd.Flags().StringP("format", "f", "PNG", "Capture format, e.g. PNG or JPG")
}
