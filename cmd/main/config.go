package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/CTAG07/routepages/pkg/pagegen"
	"github.com/natefinch/atomic"
	"github.com/titanous/json5"
)

// LedgerConfig controls the optional SQLite run history.
type LedgerConfig struct {
	Enabled      bool   `json:"enabled"`
	DatabasePath string `json:"database_path"`
}

// Config is the top-level configuration struct.
type Config struct {
	LogLevel  string          `json:"log_level"`
	Ledger    *LedgerConfig   `json:"ledger_config"`
	Generator *pagegen.Config `json:"generator_config"`
}

// DefaultConfig returns a config that selects the given variant and leaves
// every generator field to the preset.
func DefaultConfig(variant string) *Config {
	return &Config{
		LogLevel: "info",
		Ledger: &LedgerConfig{
			Enabled:      false,
			DatabasePath: "./data/routepages.db",
		},
		Generator: &pagegen.Config{Variant: variant},
	}
}

// ExpandedConfig is DefaultConfig with the preset spelled out, which is what
// gets written to disk so the file documents every knob.
func ExpandedConfig(variant string) (*Config, error) {
	config := DefaultConfig(variant)
	preset, err := pagegen.Preset(variant)
	if err != nil {
		return nil, err
	}
	config.Generator = &preset
	return config, nil
}

// LoadConfig reads the configuration from path. A sibling "<name>.local.<ext>"
// file, if present, is merged over it. If path doesn't exist, it is created
// with the expanded route preset.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig(pagegen.VariantRoute)

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			expanded, _ := ExpandedConfig(pagegen.VariantRoute)
			if err = WriteConfig(path, expanded); err != nil {
				// The run can still proceed with defaults.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return expanded, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json5.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	localPath := localConfigPath(path)
	local, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read local config file: %w", err)
	}
	if len(local) > 0 {
		// Decoded over the loaded config, so only the fields it names change.
		if err = json5.Unmarshal(local, config); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}
	}

	if config.Generator == nil {
		config.Generator = &pagegen.Config{Variant: pagegen.VariantRoute}
	}
	if config.Ledger == nil {
		config.Ledger = DefaultConfig(pagegen.VariantRoute).Ledger
	}
	return config, nil
}

// WriteConfig stores config as indented JSON, replacing path atomically.
func WriteConfig(path string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err = atomic.WriteFile(path, bytes.NewReader(append(data, '\n'))); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// localConfigPath turns "dir/routepages.json" into "dir/routepages.local.json".
func localConfigPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(level)}))
}
