// Package config loads the delivery credentials and message knobs.
//
// The native format is the flat KEY=VALUE file the backup scripts already
// ship (.telegram-config). A YAML file is accepted too, selected by the
// file extension like the main config loader does elsewhere.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

const (
	defaultMaxLength      = 4000
	defaultTimeoutSeconds = 10
)

// Config carries everything needed to deliver one report.
type Config struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`

	// Title overrides the report header title. Optional.
	Title string `yaml:"title"`
	// MaxLength is the per-message chunk limit. Optional, default 4000.
	MaxLength int `yaml:"max_length"`
	// TimeoutSeconds bounds each HTTP send. Optional, default 10.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads and validates the configuration at path. Files ending in
// .yaml/.yml are parsed as YAML; everything else as KEY=VALUE lines.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = parseYAML(data)
	default:
		cfg, err = parseKeyValue(data)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.BotToken) == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.ChatID == 0 {
		return fmt.Errorf("CHAT_ID is required")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.MaxLength <= 0 {
		c.MaxLength = defaultMaxLength
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func parseYAML(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return cfg, nil
}

// parseKeyValue reads the flat format: one KEY=VALUE per line, surrounding
// whitespace trimmed, blank lines and '#' comments ignored, values unquoted.
func parseKeyValue(data []byte) (Config, error) {
	var cfg Config

	sc := bufio.NewScanner(strings.NewReader(string(data)))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return Config{}, fmt.Errorf("line %d: not a KEY=VALUE entry", lineNo)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "BOT_TOKEN":
			cfg.BotToken = value
		case "CHAT_ID":
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return Config{}, fmt.Errorf("line %d: CHAT_ID %q is not numeric", lineNo, value)
			}
			cfg.ChatID = id
		case "TITLE":
			cfg.Title = value
		case "MAX_LENGTH":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return Config{}, fmt.Errorf("line %d: MAX_LENGTH %q is not a positive integer", lineNo, value)
			}
			cfg.MaxLength = n
		case "TIMEOUT_SECONDS":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return Config{}, fmt.Errorf("line %d: TIMEOUT_SECONDS %q is not a positive integer", lineNo, value)
			}
			cfg.TimeoutSeconds = n
		default:
			return Config{}, fmt.Errorf("line %d: unknown key %q", lineNo, key)
		}
	}
	if err := sc.Err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
