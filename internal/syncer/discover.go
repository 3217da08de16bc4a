package syncer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emiliopalmerini/claude-sync/internal/parser"
)

// Candidate is a session log found in the Claude projects directory.
type Candidate struct {
	ID         string
	Path       string
	ProjectDir string
}

// Discover lists every session log under root. Each non-hidden subdirectory is
// a project; each regular *.jsonl file in it is a session. Entries come back in
// directory order. Project directories that cannot be read are skipped.
func Discover(root string) ([]Candidate, error) {
	projects, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read projects directory: %w", err)
	}

	var candidates []Candidate
	for _, project := range projects {
		if !project.IsDir() || strings.HasPrefix(project.Name(), ".") {
			continue
		}

		projectPath := filepath.Join(root, project.Name())
		entries, err := os.ReadDir(projectPath)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != parser.SessionExt {
				continue
			}
			path := filepath.Join(projectPath, entry.Name())
			candidates = append(candidates, Candidate{
				ID:         parser.SessionID(path),
				Path:       path,
				ProjectDir: project.Name(),
			})
		}
	}
	return candidates, nil
}

// Pending returns the candidates whose id is not in synced. When the same id
// appears in several projects only the first is kept.
func Pending(candidates []Candidate, synced map[string]struct{}) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	var out []Candidate
	for _, c := range candidates {
		if _, ok := synced[c.ID]; ok {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// SplitActive separates candidates whose log was modified after cutoff.
// A session log that cannot be stat'ed stays ready so the sync reports the error.
func SplitActive(candidates []Candidate, cutoff time.Time) (ready, active []Candidate) {
	for _, c := range candidates {
		info, err := os.Stat(c.Path)
		if err == nil && info.ModTime().After(cutoff) {
			active = append(active, c)
			continue
		}
		ready = append(ready, c)
	}
	return ready, active
}
