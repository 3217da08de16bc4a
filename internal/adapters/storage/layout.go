package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/emiliopalmerini/claude-sync/internal/domain"
)

const (
	SessionsDir = "sessions"
	MetadataDir = "metadata"
)

// ErrUnknownLayout is returned by LayoutFor for names other than machine and flat.
var ErrUnknownLayout = errors.New("unknown repository layout")

// Layout decides where session content and metadata live inside the sync repository.
type Layout interface {
	Name() string
	SessionDir(root, machineID, date string) string
	MetadataDir(root, machineID string) string
}

// MachineLayout nests everything under the machine id:
// sessions/<machine>/<date>/<id>.jsonl and metadata/<machine>/<id>.json.
type MachineLayout struct{}

func (MachineLayout) Name() string { return domain.LayoutMachine }

func (MachineLayout) SessionDir(root, machineID, date string) string {
	return filepath.Join(root, SessionsDir, machineID, date)
}

func (MachineLayout) MetadataDir(root, machineID string) string {
	return filepath.Join(root, MetadataDir, machineID)
}

// FlatLayout shares one tree between machines:
// sessions/<date>/<id>.jsonl and metadata/<id>.json.
type FlatLayout struct{}

func (FlatLayout) Name() string { return domain.LayoutFlat }

func (FlatLayout) SessionDir(root, _, date string) string {
	return filepath.Join(root, SessionsDir, date)
}

func (FlatLayout) MetadataDir(root, _ string) string {
	return filepath.Join(root, MetadataDir)
}

// LayoutFor returns the layout registered under name. An empty name selects the machine layout.
func LayoutFor(name string) (Layout, error) {
	switch name {
	case "", domain.LayoutMachine:
		return MachineLayout{}, nil
	case domain.LayoutFlat:
		return FlatLayout{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
}
