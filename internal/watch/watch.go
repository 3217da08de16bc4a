// Package watch triggers a sync when Claude Code writes session logs.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/emiliopalmerini/claude-sync/internal/parser"
)

const (
	// DefaultDebounce is how long the session logs must be quiet before a sync runs.
	DefaultDebounce = 30 * time.Second
	// DefaultMinIdle is how long a session log must be untouched before the watcher syncs it.
	DefaultMinIdle = 10 * time.Minute
)

// RunFunc performs one sync pass. A positive retry schedules another pass
// after that delay even if no further events arrive.
type RunFunc func(ctx context.Context) (retry time.Duration, err error)

// Watcher watches the Claude projects directory and every project directory in it.
type Watcher struct {
	root     string
	debounce time.Duration
	run      RunFunc
	logger   *slog.Logger

	initialRetry time.Duration
}

func New(root string, debounce time.Duration, run RunFunc, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{root: root, debounce: debounce, run: run, logger: logger}
}

// RetryAfter schedules a pass d after Run starts, for sessions deferred
// before watching began.
func (w *Watcher) RetryAfter(d time.Duration) {
	w.initialRetry = d
}

// Run blocks until ctx is cancelled. Session log creates and writes are
// debounced into a single call of the run function; syncs never overlap.
// A failed sync is logged and the watcher keeps going.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(w.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("failed to read projects directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() && !isHidden(entry.Name()) {
			w.addProject(fsw, filepath.Join(w.root, entry.Name()))
		}
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	if w.initialRetry > 0 {
		timer.Reset(w.initialRetry)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(fsw, event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			w.logger.Info("session logs changed, syncing")
			retry, err := w.run(ctx)
			if err != nil {
				w.logger.Error("sync failed", "error", err)
			}
			if retry > 0 {
				w.logger.Debug("sessions deferred, retrying later", "retry", retry)
				timer.Reset(retry)
			}
		}
	}
}

// handle reacts to one event and reports whether a sync should be scheduled.
func (w *Watcher) handle(fsw *fsnotify.Watcher, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}

	name := filepath.Base(event.Name)
	if isHidden(name) {
		return false
	}

	// A new project directory: watch it, and sync whatever landed before the watch was added.
	if event.Has(fsnotify.Create) && filepath.Dir(event.Name) == filepath.Clean(w.root) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addProject(fsw, event.Name)
			return hasSessions(event.Name)
		}
	}

	return filepath.Ext(name) == parser.SessionExt
}

func (w *Watcher) addProject(fsw *fsnotify.Watcher, dir string) {
	if err := fsw.Add(dir); err != nil {
		w.logger.Warn("failed to watch project directory", "dir", dir, "error", err)
		return
	}
	w.logger.Debug("watching project directory", "dir", dir)
}

func hasSessions(dir string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+parser.SessionExt))
	return err == nil && len(matches) > 0
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
