package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/emiliopalmerini/claude-sync/internal/domain"
)

// fakeVcs answers git lookups from fixed values and counts calls.
type fakeVcs struct {
	remote, branch, commit string
	dirty                  bool
	available              bool
	calls                  int
}

func (f *fakeVcs) RemoteURL(_ context.Context, _ string) (string, bool) {
	f.calls++
	return f.remote, f.available && f.remote != ""
}

func (f *fakeVcs) Branch(_ context.Context, _ string) (string, bool) {
	f.calls++
	return f.branch, f.available && f.branch != ""
}

func (f *fakeVcs) CommitHash(_ context.Context, _ string) (string, bool) {
	f.calls++
	return f.commit, f.available && f.commit != ""
}

func (f *fakeVcs) IsDirty(_ context.Context, _ string) (bool, bool) {
	f.calls++
	return f.dirty, f.available
}

var testMachine = domain.MachineInfo{
	MachineID: "laptop",
	Hostname:  "laptop.local",
	Username:  "alice",
	Platform:  "darwin",
	Timezone:  "UTC",
}

// writeSession writes lines to <root>/<projectDir>/<id>.jsonl and returns the path.
func writeSession(t *testing.T, root, projectDir, id string, lines ...string) string {
	t.Helper()
	dir := filepath.Join(root, projectDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create project dir: %v", err)
	}
	path := filepath.Join(dir, id+SessionExt)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test session: %v", err)
	}
	return path
}

func newTestExtractor(vcs *fakeVcs) *Extractor {
	e := NewExtractor(vcs, testMachine)
	e.now = func() time.Time { return time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestExtract_WriteToolScenario(t *testing.T) {
	path := writeSession(t, t.TempDir(), "-Users-alice-proj", "abc123",
		`{"type":"user","timestamp":"2025-01-17T10:00:00Z","message":{"role":"user","content":"write a script"}}`,
		`{"type":"assistant","timestamp":"2025-01-17T10:00:42.5Z","message":{"model":"claude-sonnet-4","content":[{"type":"tool_use","id":"t1","name":"Write","input":{"file_path":"/tmp/x.py","content":"print(1)"}}]}}`,
	)

	meta, err := newTestExtractor(&fakeVcs{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	assertEqual(t, "SessionID", "abc123", meta.SessionID)
	assertEqual(t, "OriginalPath", "/Users/alice/proj", meta.OriginalPath)
	assertEqual(t, "ProjectName", "proj", meta.ProjectName)
	assertEqual(t, "MessageCount", int64(2), meta.MessageCount)
	assertEqual(t, "UserMessageCount", int64(1), meta.UserMessageCount)
	assertEqual(t, "AssistantMessageCount", int64(1), meta.AssistantMessageCount)
	assertEqual(t, "ToolUseCount", int64(1), meta.ToolUseCount)
	assertEqual(t, "SourceFile", path, meta.SourceFile)
	assertEqual(t, "SyncedAt", "2025-02-01T12:00:00Z", meta.SyncedAt)
	assertEqual(t, "MachineID", "laptop", meta.MachineID)
	assertEqual(t, "IsAgentSession", false, meta.IsAgentSession)

	if diff := cmp.Diff([]string{"Write"}, meta.ToolsUsed); diff != "" {
		t.Errorf("ToolsUsed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/tmp/x.py"}, meta.FilesModified); diff != "" {
		t.Errorf("FilesModified mismatch (-want +got):\n%s", diff)
	}

	if meta.DurationSeconds == nil || *meta.DurationSeconds != 42.5 {
		t.Errorf("Expected duration 42.5, got %v", meta.DurationSeconds)
	}
	if meta.Model == nil || *meta.Model != "claude-sonnet-4" {
		t.Errorf("Expected model claude-sonnet-4, got %v", meta.Model)
	}
	if meta.StartedAt == nil || *meta.StartedAt != "2025-01-17T10:00:00Z" {
		t.Errorf("Unexpected StartedAt %v", meta.StartedAt)
	}
	if meta.EndedAt == nil || *meta.EndedAt != "2025-01-17T10:00:42.5Z" {
		t.Errorf("Unexpected EndedAt %v", meta.EndedAt)
	}
}

func TestExtract_TokenTotals(t *testing.T) {
	path := writeSession(t, t.TempDir(), "-home-bob-api", "s1",
		`{"type":"assistant","message":{"usage":{"input_tokens":100,"output_tokens":50,"cache_read_input_tokens":10,"cache_creation_input_tokens":5}}}`,
		`{"type":"assistant","message":{"usage":{"input_tokens":20}}}`,
		`{"type":"assistant","message":{"content":"no usage here"}}`,
		`{"type":"user","message":{"usage":{"input_tokens":9999}}}`,
	)

	meta, err := newTestExtractor(&fakeVcs{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	assertEqual(t, "InputTokens", int64(120), meta.InputTokens)
	assertEqual(t, "OutputTokens", int64(50), meta.OutputTokens)
	assertEqual(t, "CacheReadTokens", int64(10), meta.CacheReadTokens)
	assertEqual(t, "CacheCreationTokens", int64(5), meta.CacheCreationTokens)
	assertEqual(t, "ProjectName", "api", meta.ProjectName)
}

func TestExtract_MalformedLineSkipped(t *testing.T) {
	path := writeSession(t, t.TempDir(), "-tmp-p", "bad",
		`{"type":"user","timestamp":"2025-01-17T10:00:00Z"`,
		``,
		`{"type":"user","timestamp":"2025-01-17T10:00:01Z"}`,
	)

	meta, err := newTestExtractor(&fakeVcs{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	assertEqual(t, "MessageCount", int64(1), meta.MessageCount)
	if meta.DurationSeconds == nil || *meta.DurationSeconds != 0 {
		t.Errorf("Expected zero duration, got %v", meta.DurationSeconds)
	}
}

func TestExtract_OddFieldTypesStillCounted(t *testing.T) {
	path := writeSession(t, t.TempDir(), "-tmp-p", "odd",
		`{"type":"user","timestamp":"2025-01-17T10:00:00Z","message":"oops"}`,
		`{"type":"assistant","version":2,"message":{"model":"claude-opus-4","usage":{"input_tokens":10.7,"output_tokens":"5"},"content":"plain"}}`,
		`{"type":"assistant","timestamp":1737108000,"cwd":["x"],"message":"oops"}`,
		`{"type":"system","timestamp":"2025-01-17T10:00:30Z","version":"1.0.3"}`,
		`null`,
		`[1,2]`,
	)

	meta, err := newTestExtractor(&fakeVcs{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	assertEqual(t, "MessageCount", int64(4), meta.MessageCount)
	assertEqual(t, "UserMessageCount", int64(1), meta.UserMessageCount)
	assertEqual(t, "AssistantMessageCount", int64(2), meta.AssistantMessageCount)
	assertEqual(t, "InputTokens", int64(10), meta.InputTokens)
	assertEqual(t, "OutputTokens", int64(0), meta.OutputTokens)

	if meta.Model == nil || *meta.Model != "claude-opus-4" {
		t.Errorf("Expected model claude-opus-4, got %v", meta.Model)
	}
	if meta.ClaudeVersion == nil || *meta.ClaudeVersion != "1.0.3" {
		t.Errorf("Expected version 1.0.3, got %v", meta.ClaudeVersion)
	}
	if meta.Cwd != nil {
		t.Errorf("Expected no cwd, got %q", *meta.Cwd)
	}
	if meta.StartedAt == nil || *meta.StartedAt != "2025-01-17T10:00:00Z" {
		t.Errorf("Unexpected started_at: %v", meta.StartedAt)
	}
	if meta.DurationSeconds == nil || *meta.DurationSeconds != 30 {
		t.Errorf("Expected 30s duration, got %v", meta.DurationSeconds)
	}
}

func TestExtract_FirstWriteWins(t *testing.T) {
	path := writeSession(t, t.TempDir(), "-tmp-p", "fw",
		`{"type":"summary","summary":"notes"}`,
		`{"type":"user","gitBranch":"feature","cwd":"/does/not/exist/one","version":"1.0.0"}`,
		`{"type":"user","gitBranch":"main","cwd":"/does/not/exist/two","version":"2.0.0"}`,
		`{"type":"assistant","message":{"model":"first-model"}}`,
		`{"type":"assistant","message":{"model":"last-model"}}`,
	)

	vcs := &fakeVcs{available: true, remote: "r", commit: "c"}
	meta, err := newTestExtractor(vcs).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if meta.GitBranch == nil || *meta.GitBranch != "feature" {
		t.Errorf("Expected branch feature, got %v", meta.GitBranch)
	}
	if meta.Cwd == nil || *meta.Cwd != "/does/not/exist/one" {
		t.Errorf("Expected first cwd, got %v", meta.Cwd)
	}
	if meta.ClaudeVersion == nil || *meta.ClaudeVersion != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %v", meta.ClaudeVersion)
	}
	if meta.Model == nil || *meta.Model != "last-model" {
		t.Errorf("Expected last-model, got %v", meta.Model)
	}
	assertEqual(t, "MessageCount", int64(5), meta.MessageCount)
	assertEqual(t, "UserMessageCount+AssistantMessageCount", int64(4), meta.UserMessageCount+meta.AssistantMessageCount)

	// cwd does not exist on disk, so git is never consulted
	assertEqual(t, "vcs calls", 0, vcs.calls)
	if meta.GitRemote != nil || meta.GitCommit != nil || meta.GitDirty != nil {
		t.Error("Expected git fields to be absent")
	}
}

func TestExtract_GitContextFromExistingCwd(t *testing.T) {
	cwd := t.TempDir()
	path := writeSession(t, t.TempDir(), "-tmp-p", "git",
		`{"type":"user","cwd":"`+filepath.ToSlash(cwd)+`"}`,
	)

	vcs := &fakeVcs{available: true, remote: "git@example.com:a/b.git", branch: "main", commit: "0123456789ab", dirty: true}
	meta, err := newTestExtractor(vcs).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if meta.GitRemote == nil || *meta.GitRemote != "git@example.com:a/b.git" {
		t.Errorf("Unexpected GitRemote %v", meta.GitRemote)
	}
	if meta.GitCommit == nil || *meta.GitCommit != "0123456789ab" {
		t.Errorf("Unexpected GitCommit %v", meta.GitCommit)
	}
	if meta.GitDirty == nil || !*meta.GitDirty {
		t.Errorf("Unexpected GitDirty %v", meta.GitDirty)
	}
	if meta.GitBranch == nil || *meta.GitBranch != "main" {
		t.Errorf("Expected branch from vcs, got %v", meta.GitBranch)
	}
}

func TestExtract_NonRepositoryCwd(t *testing.T) {
	cwd := t.TempDir()
	path := writeSession(t, t.TempDir(), "-tmp-p", "nogit",
		`{"type":"user","cwd":"`+filepath.ToSlash(cwd)+`","timestamp":"2025-01-17T10:00:00Z"}`,
	)

	meta, err := newTestExtractor(&fakeVcs{available: false}).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if meta.GitRemote != nil || meta.GitCommit != nil || meta.GitDirty != nil || meta.GitBranch != nil {
		t.Error("Expected all git fields to be absent")
	}
	assertEqual(t, "MessageCount", int64(1), meta.MessageCount)
}

func TestExtract_SortedDistinctSets(t *testing.T) {
	path := writeSession(t, t.TempDir(), "-tmp-p", "sets",
		`{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Read","input":{"file_path":"/r.go"}},{"type":"tool_use","name":"Edit","input":{"file_path":"/b.go"}}]}}`,
		`{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Bash","input":{"command":"ls"}},{"type":"tool_use","name":"Edit","input":{"file_path":"/a.go"}}]}}`,
		`{"type":"assistant","message":{"content":[{"type":"tool_use","name":"NotebookEdit","input":{"notebook_path":"/n.ipynb"}},{"type":"tool_use","name":"Edit","input":{"file_path":"/b.go"}}]}}`,
		`{"type":"assistant","message":{"content":[{"type":"thinking","thinking":"hmm"},{"type":"text","text":"done"}]}}`,
	)

	meta, err := newTestExtractor(&fakeVcs{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if diff := cmp.Diff([]string{"Bash", "Edit", "NotebookEdit", "Read"}, meta.ToolsUsed); diff != "" {
		t.Errorf("ToolsUsed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/a.go", "/b.go", "/n.ipynb"}, meta.FilesModified); diff != "" {
		t.Errorf("FilesModified mismatch (-want +got):\n%s", diff)
	}
	assertEqual(t, "ToolUseCount", int64(6), meta.ToolUseCount)
}

func TestExtract_UnparsableTimestamps(t *testing.T) {
	path := writeSession(t, t.TempDir(), "-tmp-p", "ts",
		`{"type":"user","timestamp":"yesterday"}`,
		`{"type":"user","timestamp":"2025-01-17T10:00:00Z"}`,
	)

	meta, err := newTestExtractor(&fakeVcs{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if meta.DurationSeconds != nil {
		t.Errorf("Expected nil duration, got %v", *meta.DurationSeconds)
	}
	if meta.StartedAt == nil || *meta.StartedAt != "yesterday" {
		t.Errorf("Expected raw StartedAt, got %v", meta.StartedAt)
	}
}

func TestExtract_EmptySession(t *testing.T) {
	path := writeSession(t, t.TempDir(), "-tmp-p", "agent-empty")

	meta, err := newTestExtractor(&fakeVcs{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	assertEqual(t, "MessageCount", int64(0), meta.MessageCount)
	assertEqual(t, "IsAgentSession", true, meta.IsAgentSession)
	if meta.StartedAt != nil || meta.DurationSeconds != nil {
		t.Error("Expected no timestamps for an empty session")
	}
	if meta.ToolsUsed == nil || len(meta.ToolsUsed) != 0 {
		t.Errorf("Expected empty, non-nil ToolsUsed, got %#v", meta.ToolsUsed)
	}
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := newTestExtractor(&fakeVcs{}).Extract(context.Background(), filepath.Join(t.TempDir(), "missing.jsonl"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestSessionID(t *testing.T) {
	assertEqual(t, "SessionID", "abc123", SessionID("/x/-Users-a/abc123.jsonl"))
}

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}
