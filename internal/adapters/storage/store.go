package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/emiliopalmerini/claude-sync/internal/domain"
)

const (
	sessionExt  = ".jsonl"
	metadataExt = ".json"
)

// Store writes sessions and metadata into the sync repository for one machine.
type Store struct {
	root      string
	machineID string
	layout    Layout
}

func NewStore(root, machineID string, layout Layout) *Store {
	if layout == nil {
		layout = MachineLayout{}
	}
	return &Store{root: root, machineID: machineID, layout: layout}
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) Layout() Layout {
	return s.layout
}

// SessionPath returns where the content of session id is stored for the given date bucket.
func (s *Store) SessionPath(date, id string) string {
	return filepath.Join(s.layout.SessionDir(s.root, s.machineID, date), id+sessionExt)
}

// MetadataPath returns where the metadata of session id is stored.
func (s *Store) MetadataPath(id string) string {
	return filepath.Join(s.layout.MetadataDir(s.root, s.machineID), id+metadataExt)
}

// SyncedIDs returns the ids of every session with a metadata file. A missing
// metadata directory means nothing has been synced yet.
func (s *Store) SyncedIDs() (map[string]struct{}, error) {
	dir := s.layout.MetadataDir(s.root, s.machineID)
	ids := make(map[string]struct{})

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return ids, nil
		}
		return nil, fmt.Errorf("failed to read metadata directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != metadataExt {
			continue
		}
		ids[strings.TrimSuffix(name, metadataExt)] = struct{}{}
	}
	return ids, nil
}

// EnsureDirs creates the top-level sessions and metadata directories.
func (s *Store) EnsureDirs() error {
	for _, dir := range []string{SessionsDir, MetadataDir} {
		if err := os.MkdirAll(filepath.Join(s.root, dir), 0755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}
	return nil
}

// WriteSession copies the session log at src into the repository under date and
// returns the destination path. Thinking blocks are removed unless includeThinking is set.
func (s *Store) WriteSession(src, date, id string, includeThinking bool) (string, error) {
	dest := s.SessionPath(date, id)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = in.Close() }()

	err = writeFileAtomic(dest, func(w io.Writer) error {
		if includeThinking {
			_, err := io.Copy(w, in)
			return err
		}
		return FilterThinking(in, w)
	})
	if err != nil {
		return "", fmt.Errorf("failed to copy session: %w", err)
	}
	return dest, nil
}

// WriteMetadata writes meta as indented JSON. Its presence marks the session as synced,
// so it is written after the session content.
func (s *Store) WriteMetadata(meta *domain.SessionMetadata) (string, error) {
	dest := s.MetadataPath(meta.SessionID)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create metadata directory: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}
	data = append(data, '\n')

	err = writeFileAtomic(dest, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}
	return dest, nil
}

// writeFileAtomic writes to a temp file in the destination directory and renames it into place.
func writeFileAtomic(dest string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, dest)
}
