// Package watch re-runs classification when files appear in a source tree.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/folderly/internal/common"
	"github.com/Veraticus/folderly/internal/model"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a burst of events triggers a run.
const DefaultDebounce = 2 * time.Second

// Trigger starts a classification run. It should return promptly; a
// common.ErrAlreadyRunning result re-arms the debounce timer.
type Trigger func(ctx context.Context) error

// Watcher watches a source tree recursively and calls its trigger once
// events have settled.
type Watcher struct {
	trigger  Trigger
	root     string
	ignore   []string
	debounce time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnore skips events under the given directories.
func WithIgnore(dirs ...string) Option {
	return func(w *Watcher) {
		for _, d := range dirs {
			if d != "" {
				w.ignore = append(w.ignore, filepath.Clean(d))
			}
		}
	}
}

// New creates a watcher for root.
func New(root string, trigger Trigger, opts ...Option) *Watcher {
	w := &Watcher{
		root:     filepath.Clean(root),
		trigger:  trigger,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// DestinationDirs lists the folders a run under dest can create, so their
// own events do not trigger another run.
func DestinationDirs(dest string, table *model.CategoryTable, rules []model.ClassificationRule) []string {
	seen := make(map[string]struct{})
	var dirs []string
	add := func(folder string) {
		if folder == "" {
			return
		}
		dir := filepath.Join(dest, folder)
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	for _, r := range rules {
		add(r.Destination)
	}
	for _, c := range table.Categories() {
		add(c.Name)
	}
	return dirs
}

// Run blocks until ctx is cancelled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	if w.trigger == nil {
		return errors.New("watch trigger is nil")
	}
	info, err := os.Stat(w.root)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrInvalidSource, w.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", common.ErrInvalidSource, w.root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			slog.Debug("Failed to close watcher", "error", closeErr)
		}
	}()

	if err := w.addRecursive(watcher, w.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}
	slog.Info("Watching for new files", "root", w.root, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
				if addErr := w.addRecursive(watcher, event.Name); addErr != nil {
					slog.Debug("Failed to watch new folder", "path", event.Name, "error", addErr)
				}
			}
			timer.Reset(w.debounce)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watch error", "error", watchErr)

		case <-timer.C:
			err := w.trigger(ctx)
			switch {
			case errors.Is(err, common.ErrAlreadyRunning):
				common.LogDebug("Run in progress, retrying after debounce", common.Fields{"root": w.root})
				timer.Reset(w.debounce)
			case err != nil:
				common.LogError(err, "Watch-triggered run failed", common.Fields{"root": w.root})
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return !w.ignored(event.Name)
}

func (w *Watcher) ignored(path string) bool {
	path = filepath.Clean(path)
	for _, dir := range w.ignore {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return filepath.SkipDir
			}
			return err
		}
		return nil
	})
}
