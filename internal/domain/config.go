package domain

import (
	"os"
	"path/filepath"
	"time"
)

const (
	LayoutMachine = "machine"
	LayoutFlat    = "flat"
)

// Config is the claude-sync configuration after all layers have been merged.
type Config struct {
	MachineID          string        `mapstructure:"machine_id" json:"machine_id"`
	SyncRepoPath       string        `mapstructure:"sync_repo_path" json:"sync_repo_path"`
	ClaudeProjectsPath string        `mapstructure:"claude_projects_path" json:"claude_projects_path"`
	SyncOnSave         bool          `mapstructure:"sync_on_save" json:"sync_on_save"`
	IncludeThinking    bool          `mapstructure:"include_thinking" json:"include_thinking"`
	Layout             string        `mapstructure:"layout" json:"layout"`
	GitTimeout         time.Duration `mapstructure:"git_timeout" json:"git_timeout"`

	// Extra holds keys this version does not recognize; they are written back on save.
	Extra map[string]any `mapstructure:"-" json:"-"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	hostname, _ := os.Hostname()
	home, _ := os.UserHomeDir()

	return Config{
		MachineID:          hostname,
		SyncRepoPath:       filepath.Join(home, ".claude-sync", "repo"),
		ClaudeProjectsPath: filepath.Join(home, ".claude", "projects"),
		SyncOnSave:         true,
		IncludeThinking:    false,
		Layout:             LayoutMachine,
		GitTimeout:         5 * time.Second,
	}
}
