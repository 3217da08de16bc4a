package domain

// SyncResult summarizes one sync run.
type SyncResult struct {
	RunID            string `json:"run_id" yaml:"run_id"`
	MachineID        string `json:"machine_id" yaml:"machine_id"`
	PreviouslySynced int    `json:"previously_synced" yaml:"previously_synced"`
	NewlySynced      int    `json:"newly_synced" yaml:"newly_synced"`
	Failed           int    `json:"failed" yaml:"failed"`
	Deferred         int    `json:"deferred,omitempty" yaml:"deferred,omitempty"`
	Total            int    `json:"total" yaml:"total"`
	Committed        bool   `json:"committed" yaml:"committed"`
	Pushed           bool   `json:"pushed" yaml:"pushed"`
	PullError        string `json:"pull_error,omitempty" yaml:"pull_error,omitempty"`
	PushError        string `json:"push_error,omitempty" yaml:"push_error,omitempty"`

	// TotalTokens is the token sum over newly synced sessions.
	TotalTokens int64 `json:"total_tokens" yaml:"total_tokens"`
}

// Status is a read-only snapshot of local and repository state.
type Status struct {
	MachineID          string `json:"machine_id" yaml:"machine_id"`
	SyncRepoPath       string `json:"sync_repo_path" yaml:"sync_repo_path"`
	ClaudeProjectsPath string `json:"claude_projects_path" yaml:"claude_projects_path"`
	Layout             string `json:"layout" yaml:"layout"`
	Initialized        bool   `json:"initialized" yaml:"initialized"`

	LocalSessions  int `json:"local_sessions" yaml:"local_sessions"`
	SyncedSessions int `json:"synced_sessions" yaml:"synced_sessions"`
	// Pending is LocalSessions minus SyncedSessions. Synced ids that no longer
	// exist locally make it undercount.
	Pending int `json:"pending" yaml:"pending"`

	UncommittedChanges bool   `json:"uncommitted_changes" yaml:"uncommitted_changes"`
	Remote             string `json:"remote,omitempty" yaml:"remote,omitempty"`
}
