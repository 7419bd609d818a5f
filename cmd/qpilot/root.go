package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/qpilot"
	"github.com/aretw0/qpilot/internal/logging"
	"github.com/aretw0/qpilot/pkg/remote"
	"github.com/aretw0/qpilot/pkg/widgets"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "qpilot",
	Short: "qpilot drives instrumented Qt applications from the command line",
	Long: `qpilot talks to the probe embedded in a Qt application and lets you
inspect its widget tree, read and change properties, and replay user
interactions like clicks and key strokes.

Widgets are addressed by their designer path ("mainWindow::btnOK").
Prefix the argument with '@' to address by alias from an aliases file
("@ok_button").`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("address", "a", "localhost:9000", "Address of the application probe")
	rootCmd.PersistentFlags().StringArrayP("aliases", "A", nil, "Aliases file (repeatable, later files win)")
	rootCmd.PersistentFlags().DurationP("timeout", "t", 10*time.Second, "Timeout for lookups and waits")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
}

// connect dials the probe with the persistent flags applied. Extra
// options stack on top of the flag derived ones.
func connect(cmd *cobra.Command, extra ...qpilot.Option) (*qpilot.Client, error) {
	addr, _ := cmd.Flags().GetString("address")
	aliasFiles, _ := cmd.Flags().GetStringArray("aliases")
	levelName, _ := cmd.Flags().GetString("log-level")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)
	slog.SetDefault(logger)

	opts := []qpilot.Option{
		qpilot.WithLogger(logger),
		qpilot.WithDialTimeout(timeout),
	}
	for _, f := range aliasFiles {
		opts = append(opts, qpilot.WithAliases(f))
	}
	opts = append(opts, extra...)
	return qpilot.Connect(cmd.Context(), addr, opts...)
}

// lookupOpts turns the persistent timeout flag into widget lookup options.
func lookupOpts(cmd *cobra.Command) []widgets.Option {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		return nil
	}
	return []widgets.Option{widgets.WithTimeout(timeout)}
}

// resolveTarget looks a widget up by path, or by alias when the argument
// carries the '@' prefix.
func resolveTarget(cmd *cobra.Command, c *qpilot.Client, target string) (remote.Object, error) {
	if alias, ok := strings.CutPrefix(target, "@"); ok {
		return c.WidgetByAlias(cmd.Context(), alias, lookupOpts(cmd)...)
	}
	return c.Widget(cmd.Context(), target, lookupOpts(cmd)...)
}
