// Package folders finds empty directories, removes them into a quarantine
// area and restores them on request.
package folders

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Veraticus/folderly/internal/common"
	"github.com/Veraticus/folderly/internal/fsutil"
	"github.com/Veraticus/folderly/internal/model"
	"github.com/Veraticus/folderly/internal/service"
	"github.com/spf13/afero"
)

// DefaultExclusions are directory names that are never reported or descended into.
var DefaultExclusions = []string{
	".git",
	".hg",
	".svn",
	"__pycache__",
	".venv",
	".vscode",
	".idea",
	"node_modules",
}

// Manager detects, removes and restores empty directories.
type Manager struct {
	fs         afero.Fs
	history    service.HistoryRecorder
	now        func() time.Time
	quarantine string
	batchSize  int
}

// Option configures a Manager.
type Option func(*Manager)

// WithQuarantine makes Delete move directories under dir instead of erasing them.
func WithQuarantine(dir string) Option {
	return func(m *Manager) {
		if dir == "" {
			return
		}
		if abs, err := fsutil.Abs(dir); err == nil {
			m.quarantine = abs
		} else {
			m.quarantine = filepath.Clean(dir)
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithBatchSize sets how many deletions happen between progress reports.
func WithBatchSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.batchSize = n
		}
	}
}

// New creates a Manager. Without WithQuarantine, Delete is permanent.
func New(fs afero.Fs, history service.HistoryRecorder, opts ...Option) *Manager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	m := &Manager{
		fs:        fs,
		history:   history,
		now:       time.Now,
		batchSize: 10,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// QuarantineDir returns the quarantine root, or "" when deletion is permanent.
func (m *Manager) QuarantineDir() string {
	return m.quarantine
}

// Detect lists directories under root whose own listing is empty. Children
// are reported before their parents. The root itself and any directory named
// in DefaultExclusions or extra are never reported, and excluded directories
// are not descended into. A cancelled context stops the scan and returns the
// candidates found so far.
func (m *Manager) Detect(ctx context.Context, root string, extra []string) ([]model.EmptyDirectoryCandidate, error) {
	if root == "" {
		return nil, common.ErrNoSource
	}
	root, err := fsutil.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSource, err)
	}

	info, err := m.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrInvalidSource, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidSource, root)
	}

	excluded := exclusionSet(extra)
	detectedAt := m.now()
	var candidates []model.EmptyDirectoryCandidate

	var visit func(dir string) bool
	visit = func(dir string) bool {
		if ctx.Err() != nil {
			return false
		}

		entries, err := afero.ReadDir(m.fs, dir)
		if err != nil {
			slog.Debug("Skipping unreadable directory", "path", dir, "error", err)
			return true
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if _, skip := excluded[entry.Name()]; skip {
				continue
			}
			if !visit(filepath.Join(dir, entry.Name())) {
				return false
			}
		}

		if dir != root && len(entries) == 0 {
			candidates = append(candidates, model.EmptyDirectoryCandidate{
				Path:       dir,
				Name:       filepath.Base(dir),
				DetectedAt: detectedAt,
				Selected:   true,
			})
		}
		return true
	}

	if !visit(root) {
		slog.Warn("Empty folder scan cancelled", "root", root, "found", len(candidates))
	}
	return candidates, nil
}

// Delete removes every candidate and returns the paths actually removed.
// With a quarantine configured each directory is moved into a fresh slot
// under it; otherwise it is erased. Candidates that are gone or cannot be
// removed are skipped.
func (m *Manager) Delete(ctx context.Context, candidates []model.EmptyDirectoryCandidate, progress model.ProgressFunc) ([]string, error) {
	if len(candidates) == 0 {
		return nil, common.ErrEmptySelection
	}
	snapshot := append([]model.EmptyDirectoryCandidate(nil), candidates...)
	total := len(snapshot)

	var removed []string
	cancelled := false
	for _, candidate := range snapshot {
		quarantined, err := m.remove(candidate.Path)
		if err != nil {
			slog.Debug("Failed to remove folder", "path", candidate.Path, "error", err)
			continue
		}
		removed = append(removed, candidate.Path)

		m.record(ctx, model.HistoryEntry{
			Type:           model.ActionEmptyFolder,
			SourcePath:     candidate.Path,
			QuarantinePath: quarantined,
			Detail:         model.HistoryDetail{Action: model.FolderActionDelete},
		})

		if len(removed)%m.batchSize == 0 {
			if ctx.Err() != nil {
				cancelled = true
				break
			}
			report(progress, min(0.95, float64(len(removed))/float64(max(1, total))))
		}
	}

	slog.Info("Empty folder removal finished",
		"removed", len(removed),
		"selected", total,
		"quarantine", m.quarantine != "",
		"cancelled", cancelled)

	if !cancelled {
		report(progress, 1.0)
	}
	return removed, nil
}

func (m *Manager) remove(path string) (string, error) {
	info, err := m.fs.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", path)
	}

	if m.quarantine == "" {
		return "", m.fs.RemoveAll(path)
	}
	return m.moveToQuarantine(path)
}

func (m *Manager) record(ctx context.Context, entry model.HistoryEntry) {
	if m.history == nil {
		return
	}
	entry.Timestamp = m.now()
	if err := m.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		common.LogError(err, "Failed to record folder history", common.Fields{
			"action": entry.Detail.Action,
			"path":   entry.SourcePath,
		})
	}
}

func exclusionSet(extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(DefaultExclusions)+len(extra))
	for _, name := range DefaultExclusions {
		set[name] = struct{}{}
	}
	for _, name := range extra {
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

func isDir(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && info.IsDir()
}

func report(progress model.ProgressFunc, fraction float64) {
	if progress != nil {
		progress(fraction)
	}
}
