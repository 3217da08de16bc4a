package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/emiliopalmerini/claude-sync/internal/domain"
	"github.com/emiliopalmerini/claude-sync/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/claude-sync/internal/util"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateOutputFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("invalid output format %q (expected text, json or yaml)", format)
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported structured format %q", format)
	}
}

func printStatus(w io.Writer, st *domain.Status) {
	s := theme.Default()

	fmt.Fprintln(w, s.Row("Machine ID:", st.MachineID))
	fmt.Fprintln(w, s.Row("Sync repo:", st.SyncRepoPath))
	fmt.Fprintln(w, s.Row("Claude projects:", st.ClaudeProjectsPath))
	fmt.Fprintln(w, s.Row("Layout:", st.Layout))
	fmt.Fprintln(w)

	if !st.Initialized {
		fmt.Fprintln(w, s.Warning.Render("Status: Not initialized (run claude-sync init)"))
		return
	}

	fmt.Fprintln(w, s.Row("Local sessions:", fmt.Sprintf("%d", st.LocalSessions)))
	fmt.Fprintln(w, s.Row("Synced:", fmt.Sprintf("%d", st.SyncedSessions)))
	fmt.Fprintln(w, s.Row("Pending:", fmt.Sprintf("%d", st.Pending)))

	if st.UncommittedChanges {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Warning.Render("Uncommitted changes in sync repo"))
	}

	fmt.Fprintln(w)
	if st.Remote != "" {
		fmt.Fprintln(w, s.Row("Remote:", st.Remote))
	} else {
		fmt.Fprintln(w, s.Muted.Render("No remote configured"))
	}
}

func printSyncSummary(w io.Writer, r *domain.SyncResult) {
	s := theme.Default()

	fmt.Fprintln(w)
	summary := fmt.Sprintf("Sync complete: %d new, %d previously synced, %d total",
		r.NewlySynced, r.PreviouslySynced, r.Total)
	fmt.Fprintln(w, s.Title.Render(summary))

	if r.NewlySynced > 0 {
		fmt.Fprintln(w, s.Muted.Render(fmt.Sprintf("Tokens in new sessions: %s", util.FormatTokensInt(r.TotalTokens))))
	}
	if r.Deferred > 0 {
		fmt.Fprintln(w, s.Muted.Render(fmt.Sprintf("%d active sessions deferred until idle", r.Deferred)))
	}
	if r.Failed > 0 {
		fmt.Fprintln(w, s.Error.Render(fmt.Sprintf("%d sessions failed and will be retried on the next run", r.Failed)))
	}
	if r.PullError != "" {
		fmt.Fprintln(w, s.Warning.Render("Pull failed: "+r.PullError))
	}
	if r.PushError != "" {
		fmt.Fprintln(w, s.Warning.Render("Push failed: "+r.PushError))
	}
}
