package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/emiliopalmerini/claude-sync/internal/domain"
)

const ReadmeFile = "README.md"

var readmeTemplate = template.Must(template.New("readme").Parse(`# Claude Sync Repository

This repository contains synced Claude Code conversations{{if .Machine}} from multiple machines{{end}}.

## Structure ({{.Layout}} layout)

` + "```" + `
sessions/
{{- if .Machine}}
  <machine-id>/
    <date>/
      <session-id>.jsonl      # Raw conversation
{{- else}}
  <date>/
    <session-id>.jsonl        # Raw conversation
{{- end}}
metadata/
{{- if .Machine}}
  <machine-id>/
    <session-id>.json         # Enriched metadata
{{- else}}
  <session-id>.json           # Enriched metadata
{{- end}}
` + "```" + `

## Querying

Metadata files are plain JSON, one per session. Use jq or grep, for example:

` + "```" + `
jq -r 'select(.project_name == "my-project") | .session_id' {{.MetadataGlob}}
` + "```" + `
`))

type readmeData struct {
	Layout       string
	Machine      bool
	MetadataGlob string
}

// RenderReadme returns the README describing the given layout.
func RenderReadme(layout Layout) ([]byte, error) {
	data := readmeData{
		Layout:       layout.Name(),
		Machine:      layout.Name() == domain.LayoutMachine,
		MetadataGlob: "metadata/*.json",
	}
	if data.Machine {
		data.MetadataGlob = "metadata/*/*.json"
	}

	var buf bytes.Buffer
	if err := readmeTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render README: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteReadme writes README.md at the repository root.
func (s *Store) WriteReadme() error {
	content, err := RenderReadme(s.layout)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.root, ReadmeFile), content, 0644); err != nil {
		return fmt.Errorf("failed to write README: %w", err)
	}
	return nil
}
