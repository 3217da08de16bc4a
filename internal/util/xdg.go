package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GetAppDir returns the claude-sync home directory.
// It respects CLAUDE_SYNC_HOME if set, otherwise falls back to ~/.claude-sync
func GetAppDir() (string, error) {
	if home := os.Getenv("CLAUDE_SYNC_HOME"); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".claude-sync"), nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
