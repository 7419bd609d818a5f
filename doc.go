/*
Package qpilot drives instrumented Qt applications over a TCP probe, for functional UI testing and automation.

It speaks the probe's length-prefixed JSON dialect and turns the flat descriptors coming back into typed remote objects (widgets, item views, combo boxes, quick items), so test code reads like interaction with the UI rather than protocol plumbing.

# Concept

The application under test loads a small injected probe library that listens on a TCP port and executes commands against the live widget tree. qpilot is the other end of that wire. A Client owns one connection and one class registry; every lookup resolves an object path (or a friendly alias) to a remote object whose concrete Go type follows the object's Qt class chain. Interactions (clicks, key sequences, model item picks, drags) are commands; state reads (properties, tree dumps, screenshots) are queries. Polling with bounded timeouts absorbs the asynchrony of a real event loop.

# Key Features

  - Typed Remote Objects: descriptors decode into the most specific registered type along the class chain, deterministically.
  - Path and Alias Lookup: deep widget paths live in YAML alias files with ${name} references, not in test code.
  - Event-Loop Aware: lookups wait for the target window to have been active once; property reads poll until a deadline.
  - Embeddable: the same Client backs the CLI, an HTTP gateway and an MCP server, or your own harness via an injected channel.

# Usage

Launch the application with the probe activation environment (or attach to one already running), connect, and interact.

	package main

	import (
		"context"
		"log"
		"time"

		"github.com/aretw0/qpilot"
		"github.com/aretw0/qpilot/pkg/domain"
		"github.com/aretw0/qpilot/pkg/widgets"
	)

	func main() {
		ctx := context.Background()

		// Connect to a probe. The address is retried while the
		// application is still starting up.
		client, err := qpilot.Connect(ctx, "localhost:9000",
			qpilot.WithAliases("aliases.yaml"),
			qpilot.WithDialTimeout(20*time.Second),
		)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()

		// Resolve a widget through its alias and click it.
		button, err := client.WidgetByAlias(ctx, "ok_button")
		if err != nil {
			log.Fatal(err)
		}
		if err := button.(*widgets.Widget).Click(ctx, domain.ButtonLeft); err != nil {
			log.Fatal(err)
		}

		// Wait for the UI to react.
		label, err := client.WidgetByAlias(ctx, "status_label")
		if err != nil {
			log.Fatal(err)
		}
		ok, err := label.AsObject().WaitForProperties(ctx,
			map[string]any{"text": "Done"}, 10*time.Second, 100*time.Millisecond)
		if err != nil {
			log.Fatal(err)
		}
		if !ok {
			log.Fatal("status never settled")
		}
	}

Applications are usually launched through the process runner in pkg/adapters/process, which picks a free port, injects the activation environment and connects once the probe answers.
*/
package qpilot
