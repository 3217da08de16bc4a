package domain

import "time"

// SessionMetadata is the derived summary written once per synced session.
// Pointer fields serialize as null when the value could not be determined.
type SessionMetadata struct {
	SessionID      string `json:"session_id"`
	IsAgentSession bool   `json:"is_agent_session"`

	MachineID string `json:"machine_id"`
	Hostname  string `json:"hostname"`
	Username  string `json:"username"`
	Platform  string `json:"platform"`
	Timezone  string `json:"timezone"`

	ProjectName  string  `json:"project_name"`
	OriginalPath string  `json:"original_path"`
	Cwd          *string `json:"cwd"`

	GitRemote *string `json:"git_remote"`
	GitBranch *string `json:"git_branch"`
	GitCommit *string `json:"git_commit"`
	GitDirty  *bool   `json:"git_dirty"`

	Model         *string `json:"model"`
	ClaudeVersion *string `json:"claude_version"`

	MessageCount          int64 `json:"message_count"`
	UserMessageCount      int64 `json:"user_message_count"`
	AssistantMessageCount int64 `json:"assistant_message_count"`
	ToolUseCount          int64 `json:"tool_use_count"`

	InputTokens         int64 `json:"input_tokens"`
	OutputTokens        int64 `json:"output_tokens"`
	CacheReadTokens     int64 `json:"cache_read_tokens"`
	CacheCreationTokens int64 `json:"cache_creation_tokens"`

	ToolsUsed     []string `json:"tools_used"`
	FilesModified []string `json:"files_modified"`

	StartedAt       *string  `json:"started_at"`
	EndedAt         *string  `json:"ended_at"`
	DurationSeconds *float64 `json:"duration_seconds"`
	SyncedAt        string   `json:"synced_at"`
	SourceFile      string   `json:"source_file"`
}

// TotalTokens returns the sum of all token counters.
func (m *SessionMetadata) TotalTokens() int64 {
	return m.InputTokens + m.OutputTokens + m.CacheReadTokens + m.CacheCreationTokens
}

// DateBucket returns the calendar date (YYYY-MM-DD) the session is filed under,
// or fallback when the start timestamp is missing or does not begin with a valid date.
func (m *SessionMetadata) DateBucket(fallback string) string {
	if m.StartedAt == nil || len(*m.StartedAt) < 10 {
		return fallback
	}
	date := (*m.StartedAt)[:10]
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return fallback
	}
	return date
}

// MachineInfo identifies the host that produced a session.
type MachineInfo struct {
	MachineID string
	Hostname  string
	Username  string
	Platform  string
	Timezone  string
}
