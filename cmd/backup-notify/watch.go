package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"backupnotify/internal/config"
	"backupnotify/internal/logging"
	"backupnotify/internal/notify"
	"backupnotify/internal/sdnotify"
	"backupnotify/internal/telegram"
	"backupnotify/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		pattern  string
		settle   time.Duration
		schedule string
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a directory and notify for every new or changed backup log",
		Long: `watch runs until interrupted and sends a report whenever a log file
matching --pattern is created or rewritten in the given directory. Files are
read only after they have been quiet for the --settle period. An optional
--schedule cron expression adds a periodic rescan for setups where file
events are unreliable (e.g. network mounts).`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), args[0], pattern, settle, schedule)
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", "*.log", "glob matched against log file base names")
	cmd.Flags().DurationVar(&settle, "settle", 2*time.Second, "quiet period before a changed file is read")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression for a periodic rescan (optional)")
	return cmd
}

func runWatch(ctx context.Context, dir, pattern string, settle time.Duration, schedule string) error {
	log := logging.New(logLevel)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	sink, err := telegram.New(telegram.Config{
		Token:   cfg.BotToken,
		ChatID:  cfg.ChatID,
		Timeout: cfg.Timeout(),
	})
	if err != nil {
		return err
	}
	n := notify.New(sink, log, notify.Options{Title: cfg.Title, MaxLength: cfg.MaxLength})

	w, err := watch.New(watch.Config{
		Dir:      dir,
		Pattern:  pattern,
		Settle:   settle,
		Schedule: schedule,
		OnReady:  sdnotify.Ready,
	}, log, func(ctx context.Context, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		return n.SendReport(ctx, string(data), filepath.Base(path))
	})
	if err != nil {
		return err
	}

	defer sdnotify.Stopping()
	return w.Run(ctx)
}
