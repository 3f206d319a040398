/*
Package prechoster is a document evaluation engine for composing rich posts
out of small transformation modules.

A document is an ordered list of modules. Each module names a plugin kind,
carries that plugin's configuration and sends its output along edges to
other modules or to the special output sink. Evaluating the document walks
the graph backwards from a target, runs every plugin at most once per pass
and assembles whatever reaches the output into markdown or HTML.

# Concept

The document is immutable: every edit produces a new snapshot and pushes it
onto an undo history, so a UI can read the current state synchronously while
an evaluation pass works on an older snapshot. Plugins are resolved through
a registry that loads them lazily and caches the loaded capabilities.
Evaluation never panics on plugin failures: errors are returned as a
structured result naming the module that failed.

# Key Features

  - Memoized passes: shared inputs are computed once, concurrently.
  - Bounded evaluation: cycles hit a step limit instead of hanging.
  - Undo and redo with coalescing of rapid edits to the same module.
  - Positional and named inputs, with last-writer-wins for named fan-in.
  - Versioned JSON and YAML persistence with legacy migration.
  - File, Redis and in-memory document stores with encryption middleware.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/cpsdqs/prechoster"
		"github.com/cpsdqs/prechoster/pkg/domain"
		"github.com/cpsdqs/prechoster/pkg/plugins"
	)

	func main() {
		ctx := context.Background()
		ed := prechoster.New()

		m, err := ed.Document().AddModule(ctx, plugins.KindText)
		if err != nil {
			log.Fatal(err)
		}
		_ = ed.Document().SetModuleData(m.ID, map[string]any{"contents": "hello"})
		_ = ed.Document().Connect(m.ID, domain.OutputID)

		res := ed.Render(ctx, prechoster.ModeHTML)
		defer res.Drop()
		if err := res.Err(); err != nil {
			log.Fatal(err)
		}
		fmt.Print(res.Output)
	}
*/
package prechoster
