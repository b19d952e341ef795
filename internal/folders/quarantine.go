package folders

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/folderly/internal/common"
	"github.com/Veraticus/folderly/internal/fsutil"
	"github.com/Veraticus/folderly/internal/model"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// slotTimeLayout prefixes every quarantine slot name, in UTC.
const slotTimeLayout = "20060102T150405"

// moveToQuarantine moves path into <quarantine>/<time>-<uuid>/<name>.
func (m *Manager) moveToQuarantine(path string) (string, error) {
	slot := filepath.Join(m.quarantine, m.now().UTC().Format(slotTimeLayout)+"-"+uuid.NewString())
	if err := m.fs.MkdirAll(slot, 0o700); err != nil {
		return "", fmt.Errorf("failed to create quarantine slot: %w", err)
	}

	target := filepath.Join(slot, filepath.Base(path))
	if err := fsutil.Move(m.fs, path, target); err != nil {
		_ = m.fs.Remove(slot)
		return "", err
	}
	return target, nil
}

// Restore moves a quarantined directory back under parent, as parent/name or
// the first free parent/name_N. It returns the restored path. The emptied
// quarantine slot is removed. Nothing is recorded when the move fails.
func (m *Manager) Restore(ctx context.Context, quarantinedPath, parent string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if quarantinedPath == "" || parent == "" {
		return "", common.ErrNoSource
	}
	quarantinedPath, err := fsutil.Abs(quarantinedPath)
	if err != nil {
		return "", err
	}
	parent, err = fsutil.Abs(parent)
	if err != nil {
		return "", err
	}

	if m.quarantine != "" && !m.inQuarantine(quarantinedPath) {
		return "", fmt.Errorf("%w: %s", common.ErrNotQuarantined, quarantinedPath)
	}
	if !isDir(m.fs, quarantinedPath) {
		return "", fmt.Errorf("quarantined folder %s: %w", quarantinedPath, common.ErrNotFound)
	}

	if err := m.fs.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("failed to create destination %s: %w", parent, err)
	}

	target, err := fsutil.UniqueDirPath(m.fs, parent, filepath.Base(quarantinedPath))
	if err != nil {
		return "", err
	}
	if err := fsutil.Move(m.fs, quarantinedPath, target); err != nil {
		return "", fmt.Errorf("failed to restore %s: %w", quarantinedPath, err)
	}

	if slot := filepath.Dir(quarantinedPath); m.quarantine != "" && slot != m.quarantine {
		// Only succeeds when the slot is now empty.
		_ = m.fs.Remove(slot)
	}

	m.record(ctx, model.HistoryEntry{
		Type:           model.ActionEmptyFolder,
		DestPath:       target,
		QuarantinePath: quarantinedPath,
		Detail:         model.HistoryDetail{Action: model.FolderActionRestore},
	})

	slog.Info("Restored folder", "from", quarantinedPath, "to", target)
	return target, nil
}

// ListQuarantine returns the quarantined directories, newest first.
func (m *Manager) ListQuarantine() ([]model.QuarantinedDirectory, error) {
	if m.quarantine == "" {
		return nil, nil
	}

	slots, err := m.slots()
	if err != nil {
		return nil, err
	}

	var out []model.QuarantinedDirectory
	for _, slot := range slots {
		entries, err := afero.ReadDir(m.fs, slot.path)
		if err != nil {
			slog.Debug("Skipping unreadable quarantine slot", "slot", slot.path, "error", err)
			continue
		}
		for _, entry := range entries {
			out = append(out, model.QuarantinedDirectory{
				RemovedAt: slot.removedAt,
				Slot:      slot.name,
				Path:      filepath.Join(slot.path, entry.Name()),
				Name:      entry.Name(),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RemovedAt.After(out[j].RemovedAt)
	})
	return out, nil
}

// Purge permanently erases quarantine slots older than olderThan and returns
// how many were erased.
func (m *Manager) Purge(ctx context.Context, olderThan time.Duration) (int, error) {
	if m.quarantine == "" {
		return 0, fmt.Errorf("%w: quarantine is disabled", common.ErrMissingConfig)
	}
	if olderThan < 0 {
		return 0, fmt.Errorf("%w: retention cannot be negative", common.ErrInvalidConfig)
	}

	slots, err := m.slots()
	if err != nil {
		return 0, err
	}

	cutoff := m.now().Add(-olderThan)
	purged := 0
	for _, slot := range slots {
		if ctx.Err() != nil {
			break
		}
		if slot.removedAt.After(cutoff) {
			continue
		}
		if err := m.fs.RemoveAll(slot.path); err != nil {
			slog.Debug("Failed to purge quarantine slot", "slot", slot.path, "error", err)
			continue
		}
		purged++
	}

	if purged > 0 {
		m.record(ctx, model.HistoryEntry{
			Type:       model.ActionEmptyFolder,
			SourcePath: m.quarantine,
			Detail:     model.HistoryDetail{Action: model.FolderActionPurge, Count: purged},
		})
	}

	slog.Info("Quarantine purged", "erased", purged, "older_than", olderThan)
	return purged, nil
}

type quarantineSlot struct {
	removedAt time.Time
	name      string
	path      string
}

func (m *Manager) slots() ([]quarantineSlot, error) {
	entries, err := afero.ReadDir(m.fs, m.quarantine)
	if err != nil {
		if !fsutil.Exists(m.fs, m.quarantine) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read quarantine: %w", err)
	}

	slots := make([]quarantineSlot, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		removedAt := entry.ModTime()
		if ts, ok := parseSlotTime(entry.Name()); ok {
			removedAt = ts
		}
		slots = append(slots, quarantineSlot{
			removedAt: removedAt,
			name:      entry.Name(),
			path:      filepath.Join(m.quarantine, entry.Name()),
		})
	}
	return slots, nil
}

func (m *Manager) inQuarantine(path string) bool {
	rel, err := filepath.Rel(m.quarantine, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func parseSlotTime(name string) (time.Time, bool) {
	if len(name) < len(slotTimeLayout) {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(slotTimeLayout, name[:len(slotTimeLayout)], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
