package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/aretw0/qpilot/internal/logging"
	"github.com/aretw0/qpilot/pkg/adapters/process"
	"github.com/spf13/cobra"
)

var launchCmd = &cobra.Command{
	Use:   "launch [profile]",
	Short: "Launch an application under test from an apps file",
	Long: `Starts an application declared in the apps file with its probe
activated, prints the probe address, and keeps it running until
interrupted. Without a profile name the declared profiles are listed.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		appsFile, _ := cmd.Flags().GetString("apps")

		profiles, err := process.LoadProfiles(appsFile)
		if err != nil {
			fmt.Printf("Error loading apps file: %v\n", err)
			os.Exit(1)
		}

		if len(args) == 0 {
			listProfiles(profiles)
			return
		}

		profile, ok := profiles[args[0]]
		if !ok {
			fmt.Printf("No profile '%s' in %s\n", args[0], appsFile)
			listProfiles(profiles)
			os.Exit(1)
		}

		levelName, _ := cmd.Flags().GetString("log-level")
		level, err := logging.ParseLevel(levelName)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := profile.Start(ctx,
			process.WithLogger(logging.New(level)),
			process.WithStdout(os.Stdout),
			process.WithStderr(os.Stderr),
		)
		if err != nil {
			fmt.Printf("Error launching '%s': %v\n", profile.Name, err)
			os.Exit(1)
		}

		fmt.Printf("Launched %s, probe at %s\n", profile.Name, app.Addr())

		// Hold until the application exits on its own or we are told to stop.
		if err := app.Wait(ctx); err != nil && ctx.Err() == nil {
			fmt.Printf("Application exited: %v\n", err)
			_ = app.Close()
			os.Exit(1)
		}
		if err := app.Close(); err != nil {
			fmt.Printf("Error stopping application: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Application stopped")
	},
}

func listProfiles(profiles map[string]process.Profile) {
	if len(profiles) == 0 {
		fmt.Println("No profiles declared.")
		return
	}
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Declared profiles:")
	for _, name := range names {
		p := profiles[name]
		if p.Description != "" {
			fmt.Printf("- %s: %s\n", name, p.Description)
		} else {
			fmt.Printf("- %s\n", name)
		}
	}
}

func init() {
	rootCmd.AddCommand(launchCmd)
	launchCmd.Flags().String("apps", "qpilot-apps.yaml", "Apps file declaring launch profiles")
}
