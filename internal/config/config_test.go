package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"github.com/emiliopalmerini/claude-sync/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	defaults := domain.DefaultConfig()
	assertEqual(t, "MachineID", defaults.MachineID, cfg.MachineID)
	assertEqual(t, "SyncRepoPath", defaults.SyncRepoPath, cfg.SyncRepoPath)
	assertEqual(t, "SyncOnSave", true, cfg.SyncOnSave)
	assertEqual(t, "IncludeThinking", false, cfg.IncludeThinking)
	assertEqual(t, "Layout", domain.LayoutMachine, cfg.Layout)
	assertEqual(t, "GitTimeout", 5*time.Second, cfg.GitTimeout)
	assertEqual(t, "Extra", 0, len(cfg.Extra))
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
  "machine_id": "work-laptop",
  "sync_repo_path": "/srv/sync",
  "include_thinking": true,
  "layout": "flat",
  "git_timeout": "2s"
}`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "MachineID", "work-laptop", cfg.MachineID)
	assertEqual(t, "SyncRepoPath", "/srv/sync", cfg.SyncRepoPath)
	assertEqual(t, "IncludeThinking", true, cfg.IncludeThinking)
	assertEqual(t, "SyncOnSave", true, cfg.SyncOnSave)
	assertEqual(t, "Layout", domain.LayoutFlat, cfg.Layout)
	assertEqual(t, "GitTimeout", 2*time.Second, cfg.GitTimeout)
}

func TestLoad_EnvAndFlagPrecedence(t *testing.T) {
	path := writeConfig(t, `{"machine_id": "from-file", "sync_on_save": true}`)
	t.Setenv("CLAUDE_SYNC_MACHINE_ID", "from-env")
	t.Setenv("CLAUDE_SYNC_SYNC_ON_SAVE", "false")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "MachineID", "from-env", cfg.MachineID)
	assertEqual(t, "SyncOnSave", false, cfg.SyncOnSave)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("machine-id", "", "")
	if err := flags.Parse([]string{"--machine-id", "from-flag"}); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path, flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "MachineID", "from-flag", cfg.MachineID)
}

func TestLoad_UnsetFlagDoesNotOverride(t *testing.T) {
	path := writeConfig(t, `{"machine_id": "from-file"}`)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("machine-id", "", "")

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "MachineID", "from-file", cfg.MachineID)
}

func TestLoad_InvalidLayout(t *testing.T) {
	path := writeConfig(t, `{"layout": "nested"}`)
	_, err := Load(path, nil)
	if !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("expected ErrInvalidLayout, got %v", err)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, `{not json`)
	if _, err := Load(path, nil); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestSave_PreservesUnknownKeys(t *testing.T) {
	path := writeConfig(t, `{"machine_id": "m1", "customKey": {"nested": [1, 2]}, "note": "keep me"}`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.MachineID = "m2"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var saved map[string]any
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("saved config is not JSON: %v", err)
	}

	assertEqual(t, "machine_id", "m2", saved["machine_id"].(string))
	assertEqual(t, "note", "keep me", saved["note"].(string))
	assertEqual(t, "git_timeout", "5s", saved["git_timeout"].(string))
	want := map[string]any{"nested": []any{float64(1), float64(2)}}
	if diff := cmp.Diff(want, saved["customKey"]); diff != "" {
		t.Errorf("customKey mismatch (-want +got):\n%s", diff)
	}

	reloaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	assertEqual(t, "reloaded MachineID", "m2", reloaded.MachineID)
	assertEqual(t, "reloaded Extra", 2, len(reloaded.Extra))
}

func TestSave_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", FileName)
	cfg := domain.DefaultConfig()
	cfg.MachineID = "m"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
}

func TestSet(t *testing.T) {
	cfg := domain.DefaultConfig()

	if err := Set(&cfg, KeyIncludeThinking, "true"); err != nil {
		t.Fatalf("Set include_thinking: %v", err)
	}
	assertEqual(t, "IncludeThinking", true, cfg.IncludeThinking)

	if err := Set(&cfg, KeyGitTimeout, "750ms"); err != nil {
		t.Fatalf("Set git_timeout: %v", err)
	}
	assertEqual(t, "GitTimeout", 750*time.Millisecond, cfg.GitTimeout)

	if err := Set(&cfg, KeyLayout, "flat"); err != nil {
		t.Fatalf("Set layout: %v", err)
	}
	assertEqual(t, "Layout", domain.LayoutFlat, cfg.Layout)

	if err := Set(&cfg, KeyLayout, "spiral"); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("expected ErrInvalidLayout, got %v", err)
	}
	if err := Set(&cfg, "colour", "blue"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
	if err := Set(&cfg, KeySyncOnSave, "maybe"); err == nil {
		t.Error("expected error for invalid boolean")
	}
}

func TestDefaultPath_Env(t *testing.T) {
	t.Setenv("CLAUDE_SYNC_CONFIG", "/etc/claude-sync.json")
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "path", "/etc/claude-sync.json", path)

	t.Setenv("CLAUDE_SYNC_CONFIG", "")
	t.Setenv("CLAUDE_SYNC_HOME", "/tmp/cs")
	path, err = DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "path", filepath.Join("/tmp/cs", FileName), path)
}

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}
