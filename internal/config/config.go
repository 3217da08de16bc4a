// Package config loads and saves the claude-sync configuration file.
//
// Values are layered: built-in defaults, then the JSON file, then
// CLAUDE_SYNC_* environment variables, then bound command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/emiliopalmerini/claude-sync/internal/domain"
	"github.com/emiliopalmerini/claude-sync/internal/util"
)

const (
	EnvPrefix = "CLAUDE_SYNC"
	FileName  = "config.json"
)

const (
	KeyMachineID          = "machine_id"
	KeySyncRepoPath       = "sync_repo_path"
	KeyClaudeProjectsPath = "claude_projects_path"
	KeySyncOnSave         = "sync_on_save"
	KeyIncludeThinking    = "include_thinking"
	KeyLayout             = "layout"
	KeyGitTimeout         = "git_timeout"
)

// Keys lists every recognized configuration key in file order.
var Keys = []string{
	KeyMachineID,
	KeySyncRepoPath,
	KeyClaudeProjectsPath,
	KeySyncOnSave,
	KeyIncludeThinking,
	KeyLayout,
	KeyGitTimeout,
}

var (
	ErrInvalidLayout = errors.New("invalid layout")
	ErrUnknownKey    = errors.New("unknown configuration key")
)

// flagKeys maps command-line flag names to the configuration keys they override.
var flagKeys = map[string]string{
	"machine-id": KeyMachineID,
}

// DefaultPath returns the configuration file location. CLAUDE_SYNC_CONFIG overrides it.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return util.ExpandHome(p), nil
	}
	dir, err := util.GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the configuration at path. A missing file yields the defaults.
// Flags in flags that were set on the command line take precedence over everything else.
func Load(path string, flags *pflag.FlagSet) (domain.Config, error) {
	defaults := domain.DefaultConfig()

	v := viper.New()
	v.SetDefault(KeyMachineID, defaults.MachineID)
	v.SetDefault(KeySyncRepoPath, defaults.SyncRepoPath)
	v.SetDefault(KeyClaudeProjectsPath, defaults.ClaudeProjectsPath)
	v.SetDefault(KeySyncOnSave, defaults.SyncOnSave)
	v.SetDefault(KeyIncludeThinking, defaults.IncludeThinking)
	v.SetDefault(KeyLayout, defaults.Layout)
	v.SetDefault(KeyGitTimeout, defaults.GitTimeout.String())

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	extra := map[string]any{}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return domain.Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if extra, err = readExtra(path); err != nil {
			return domain.Config{}, err
		}
	} else if !os.IsNotExist(err) {
		return domain.Config{}, fmt.Errorf("failed to stat config: %w", err)
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return domain.Config{}, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return domain.Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Extra = extra

	cfg.SyncRepoPath = util.ExpandHome(cfg.SyncRepoPath)
	cfg.ClaudeProjectsPath = util.ExpandHome(cfg.ClaudeProjectsPath)
	if cfg.GitTimeout <= 0 {
		cfg.GitTimeout = defaults.GitTimeout
	}
	if err := Validate(cfg); err != nil {
		return domain.Config{}, err
	}

	return cfg, nil
}

// readExtra returns the keys of the file that are not recognized, with their values untouched.
func readExtra(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	for _, key := range Keys {
		delete(raw, key)
	}
	return raw, nil
}

// Validate checks values that cannot be repaired with a default.
func Validate(cfg domain.Config) error {
	switch cfg.Layout {
	case domain.LayoutMachine, domain.LayoutFlat:
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidLayout, cfg.Layout, domain.LayoutMachine, domain.LayoutFlat)
	}
	if cfg.MachineID == "" {
		return fmt.Errorf("machine_id must not be empty")
	}
	return nil
}

// Save writes cfg as indented JSON, keeping any unrecognized keys it was loaded with.
func Save(path string, cfg domain.Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	out := make(map[string]any, len(cfg.Extra)+len(Keys))
	for k, v := range cfg.Extra {
		out[k] = v
	}
	for _, key := range Keys {
		out[key] = Value(cfg, key)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Value returns the value of a recognized key as it is written to the file.
func Value(cfg domain.Config, key string) any {
	switch key {
	case KeyMachineID:
		return cfg.MachineID
	case KeySyncRepoPath:
		return cfg.SyncRepoPath
	case KeyClaudeProjectsPath:
		return cfg.ClaudeProjectsPath
	case KeySyncOnSave:
		return cfg.SyncOnSave
	case KeyIncludeThinking:
		return cfg.IncludeThinking
	case KeyLayout:
		return cfg.Layout
	case KeyGitTimeout:
		return cfg.GitTimeout.String()
	default:
		return cfg.Extra[key]
	}
}

// Set parses value for a recognized key and stores it in cfg.
func Set(cfg *domain.Config, key, value string) error {
	switch key {
	case KeyMachineID:
		cfg.MachineID = value
	case KeySyncRepoPath:
		cfg.SyncRepoPath = util.ExpandHome(value)
	case KeyClaudeProjectsPath:
		cfg.ClaudeProjectsPath = util.ExpandHome(value)
	case KeySyncOnSave, KeyIncludeThinking:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %w", key, err)
		}
		if key == KeySyncOnSave {
			cfg.SyncOnSave = b
		} else {
			cfg.IncludeThinking = b
		}
	case KeyLayout:
		cfg.Layout = value
	case KeyGitTimeout:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		cfg.GitTimeout = d
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return Validate(*cfg)
}
