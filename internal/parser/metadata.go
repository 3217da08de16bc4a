package parser

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/emiliopalmerini/claude-sync/internal/domain"
	"github.com/emiliopalmerini/claude-sync/internal/ports"
)

// SessionExt is the file extension of Claude Code session logs.
const SessionExt = ".jsonl"

// fileModifyingTools are the tools whose file_path/notebook_path input is
// recorded as a modified file.
var fileModifyingTools = map[string]bool{
	"Edit":         true,
	"MultiEdit":    true,
	"Write":        true,
	"NotebookEdit": true,
}

// Extractor reduces a session log to a domain.SessionMetadata.
type Extractor struct {
	vcs     ports.VcsQuery
	machine domain.MachineInfo
	now     func() time.Time
}

// NewExtractor creates an Extractor. vcs is consulted for git context of the
// session's working directory.
func NewExtractor(vcs ports.VcsQuery, machine domain.MachineInfo) *Extractor {
	return &Extractor{
		vcs:     vcs,
		machine: machine,
		now:     time.Now,
	}
}

// LocalMachine describes the current host under the given machine id.
func LocalMachine(machineID string) domain.MachineInfo {
	hostname, _ := os.Hostname()
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	zone, _ := time.Now().Zone()

	return domain.MachineInfo{
		MachineID: machineID,
		Hostname:  hostname,
		Username:  username,
		Platform:  runtime.GOOS,
		Timezone:  zone,
	}
}

// SessionID returns the session id for a log path: its base name without extension.
func SessionID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), SessionExt)
}

type scanState struct {
	firstTimestamp *string
	lastTimestamp  *string
	gitBranch      *string
	cwd            *string
	version        *string
	model          *string

	messages, users, assistants, toolUses int64
	usage                                  domain.Usage

	tools map[string]struct{}
	files map[string]struct{}
}

func firstWins(dst **string, v string, ok bool) {
	if ok && *dst == nil {
		*dst = &v
	}
}

func (s *scanState) add(r *domain.Record) {
	s.messages++

	if ts, ok := r.Timestamp(); ok {
		if s.firstTimestamp == nil {
			s.firstTimestamp = &ts
		}
		s.lastTimestamp = &ts
	}

	branch, ok := r.GitBranch()
	firstWins(&s.gitBranch, branch, ok && branch != "")
	cwd, ok := r.Cwd()
	firstWins(&s.cwd, cwd, ok && cwd != "")
	version, ok := r.Version()
	firstWins(&s.version, version, ok && version != "")

	switch r.Kind {
	case domain.KindUser:
		s.users++
	case domain.KindAssistant:
		s.assistants++
		if model, ok := r.Model(); ok {
			s.model = &model
		}
		if u := r.Usage(); u != nil {
			s.usage.InputTokens += u.InputTokens
			s.usage.OutputTokens += u.OutputTokens
			s.usage.CacheReadInputTokens += u.CacheReadInputTokens
			s.usage.CacheCreationInputTokens += u.CacheCreationInputTokens
		}
		for _, item := range r.Content() {
			s.addContent(item)
		}
	}
}

func (s *scanState) addContent(item domain.ContentItem) {
	if item.Type != domain.ContentToolUse || item.Name == "" {
		return
	}
	s.toolUses++
	s.tools[item.Name] = struct{}{}

	if !fileModifyingTools[item.Name] {
		return
	}
	if path, ok := item.FilePath(); ok {
		s.files[path] = struct{}{}
	}
}

// Extract reads the session log at path. Lines that are not valid JSON are
// skipped; only failing to read the file is an error.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.SessionMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer file.Close()

	state := &scanState{
		tools: make(map[string]struct{}),
		files: make(map[string]struct{}),
	}

	scanner := bufio.NewScanner(file)
	// Increase buffer size for large lines
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		record, err := domain.ParseRecord(line)
		if err != nil {
			// Skip malformed lines
			continue
		}
		state.add(record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading session: %w", err)
	}

	originalPath := domain.DecodeProjectDir(filepath.Base(filepath.Dir(path)))
	sessionID := SessionID(path)

	meta := &domain.SessionMetadata{
		SessionID:      sessionID,
		IsAgentSession: strings.HasPrefix(sessionID, "agent-"),

		MachineID: e.machine.MachineID,
		Hostname:  e.machine.Hostname,
		Username:  e.machine.Username,
		Platform:  e.machine.Platform,
		Timezone:  e.machine.Timezone,

		ProjectName:  domain.ProjectName(originalPath),
		OriginalPath: originalPath,
		Cwd:          state.cwd,

		GitBranch:     state.gitBranch,
		Model:         state.model,
		ClaudeVersion: state.version,

		MessageCount:          state.messages,
		UserMessageCount:      state.users,
		AssistantMessageCount: state.assistants,
		ToolUseCount:          state.toolUses,

		InputTokens:         state.usage.InputTokens,
		OutputTokens:        state.usage.OutputTokens,
		CacheReadTokens:     state.usage.CacheReadInputTokens,
		CacheCreationTokens: state.usage.CacheCreationInputTokens,

		ToolsUsed:     sortedKeys(state.tools),
		FilesModified: sortedKeys(state.files),

		StartedAt:       state.firstTimestamp,
		EndedAt:         state.lastTimestamp,
		DurationSeconds: durationSeconds(state.firstTimestamp, state.lastTimestamp),
		SyncedAt:        e.now().UTC().Format(time.RFC3339Nano),
		SourceFile:      path,
	}

	if state.cwd != nil {
		e.addGitContext(ctx, meta, *state.cwd)
	}

	return meta, nil
}

// addGitContext fills the git fields from the working directory, if it still exists.
func (e *Extractor) addGitContext(ctx context.Context, meta *domain.SessionMetadata, cwd string) {
	if e.vcs == nil {
		return
	}
	if info, err := os.Stat(cwd); err != nil || !info.IsDir() {
		return
	}

	if url, ok := e.vcs.RemoteURL(ctx, cwd); ok {
		meta.GitRemote = &url
	}
	if hash, ok := e.vcs.CommitHash(ctx, cwd); ok {
		meta.GitCommit = &hash
	}
	if dirty, ok := e.vcs.IsDirty(ctx, cwd); ok {
		meta.GitDirty = &dirty
	}
	if meta.GitBranch == nil {
		if branch, ok := e.vcs.Branch(ctx, cwd); ok {
			meta.GitBranch = &branch
		}
	}
}

func parseTimestamp(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func durationSeconds(first, last *string) *float64 {
	if first == nil || last == nil {
		return nil
	}
	start, ok := parseTimestamp(*first)
	if !ok {
		return nil
	}
	end, ok := parseTimestamp(*last)
	if !ok {
		return nil
	}
	d := math.Round(end.Sub(start).Seconds()*100) / 100
	return &d
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
