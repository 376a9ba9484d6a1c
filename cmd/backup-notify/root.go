package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"backupnotify/internal/config"
	"backupnotify/internal/logging"
	"backupnotify/internal/notify"
	"backupnotify/internal/telegram"
)

var (
	cfgPath  string
	logLevel string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup-notify <log-file>",
		Short: "Send a backup log report to a Telegram chat",
		Long: `backup-notify reads a backup tool's log file, derives the run status
(SUCCESS, SKIPPED or FAILED), formats it as an HTML report and delivers it to a
Telegram chat, split into parts when the report exceeds the message limit.

Credentials come from a KEY=VALUE file (BOT_TOKEN, CHAT_ID) or a YAML file
selected by extension.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd.Context(), args[0])
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", ".telegram-config", "path to the credentials file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")

	cmd.AddCommand(newWatchCmd(), newVersionCmd())
	return cmd
}

// Execute runs the CLI. Any returned error has already been printed by cobra.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func runSend(ctx context.Context, logPath string) error {
	log := logging.New(logLevel)

	// The log file is checked before the configuration is touched, so a bad
	// invocation fails fast without reading credentials.
	data, err := os.ReadFile(logPath)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}

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
	return n.SendReport(ctx, string(data), filepath.Base(logPath))
}
