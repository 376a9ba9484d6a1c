package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadKeyValue(t *testing.T) {
	t.Parallel()
	path := writeFile(t, ".telegram-config", `
# Telegram credentials for the backup notifier
BOT_TOKEN = 123456:ABC-secret
CHAT_ID=987654321

TITLE=Paperless-NGX Backup Report
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BotToken != "123456:ABC-secret" {
		t.Fatalf("BotToken = %q", cfg.BotToken)
	}
	if cfg.ChatID != 987654321 {
		t.Fatalf("ChatID = %d", cfg.ChatID)
	}
	if cfg.Title != "Paperless-NGX Backup Report" {
		t.Fatalf("Title = %q", cfg.Title)
	}
	if cfg.MaxLength != 4000 {
		t.Fatalf("MaxLength default = %d, want 4000", cfg.MaxLength)
	}
	if cfg.Timeout() != 10*time.Second {
		t.Fatalf("Timeout default = %v, want 10s", cfg.Timeout())
	}
}

func TestLoadKeyValueOverrides(t *testing.T) {
	t.Parallel()
	path := writeFile(t, ".telegram-config", "BOT_TOKEN=t\nCHAT_ID=1\nMAX_LENGTH=1000\nTIMEOUT_SECONDS=3\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxLength != 1000 || cfg.Timeout() != 3*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "notify.yaml", "bot_token: tok\nchat_id: -100123\ntitle: Nightly Backup\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BotToken != "tok" || cfg.ChatID != -100123 || cfg.Title != "Nightly Backup" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{name: "missing token", content: "CHAT_ID=1\n", wantSub: "BOT_TOKEN"},
		{name: "missing chat id", content: "BOT_TOKEN=t\n", wantSub: "CHAT_ID"},
		{name: "non numeric chat id", content: "BOT_TOKEN=t\nCHAT_ID=@channel\n", wantSub: "not numeric"},
		{name: "malformed line", content: "BOT_TOKEN=t\nCHAT_ID 1\n", wantSub: "KEY=VALUE"},
		{name: "unknown key", content: "BOT_TOKEN=t\nCHAT_ID=1\nMAX_LENGHT=10\n", wantSub: "unknown key"},
		{name: "bad max length", content: "BOT_TOKEN=t\nCHAT_ID=1\nMAX_LENGTH=zero\n", wantSub: "MAX_LENGTH"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeFile(t, ".telegram-config", tt.content))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
