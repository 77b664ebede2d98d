// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-sync/internal/platform/config"
	"github.com/taibuivan/yomira-sync/internal/platform/constants"
)

// newRootCommand builds the command tree.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "syncd",
		Short: "Yomira sync server",
		Long: `syncd serves the manga catalog and synchronizes favourites and
reading history between reader clients.`,
		Version:       constants.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(), newMigrateCommand())
	return root
}

// newLogger builds the process logger from configuration and installs it
// as the slog default.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, options)
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, options)
	}

	log := slog.New(handler).With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}
