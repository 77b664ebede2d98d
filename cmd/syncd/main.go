// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command syncd is the entry point for the Yomira sync server.
//
// # Commands
//
//   - serve: run the HTTP API (optionally applying migrations first).
//   - migrate up: apply all pending migrations.
//   - migrate down [steps]: roll back migrations.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("command_failed", slog.Any("error", err))
		os.Exit(1)
	}
}
