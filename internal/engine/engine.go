// Package engine implements the core classification engine that routes files into folders.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/folderly/internal/common"
	"github.com/Veraticus/folderly/internal/fsutil"
	"github.com/Veraticus/folderly/internal/model"
	"github.com/Veraticus/folderly/internal/pattern"
	"github.com/Veraticus/folderly/internal/service"
	"github.com/spf13/afero"
)

// ClassificationEngine moves files from a source tree into categorized folders.
type ClassificationEngine struct {
	fs         afero.Fs
	history    service.HistoryRecorder
	matcher    *pattern.Matcher
	categories *model.CategoryTable
	now        func() time.Time
	batchSize  int
}

// Config holds configuration options for the classification engine.
type Config struct {
	Categories *model.CategoryTable
	Now        func() time.Time
	// BatchSize is the number of files between progress reports and cancellation checks.
	BatchSize int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:  25,
		Categories: model.DefaultCategories,
		Now:        time.Now,
	}
}

// New creates a new classification engine with the default configuration.
func New(fs afero.Fs, history service.HistoryRecorder) *ClassificationEngine {
	return NewWithConfig(fs, history, DefaultConfig())
}

// NewWithConfig creates a new classification engine with custom configuration.
func NewWithConfig(fs afero.Fs, history service.HistoryRecorder, config Config) *ClassificationEngine {
	defaults := DefaultConfig()
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.Categories == nil {
		config.Categories = defaults.Categories
	}
	if config.Now == nil {
		config.Now = defaults.Now
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &ClassificationEngine{
		fs:         fs,
		history:    history,
		matcher:    pattern.NewMatcher(fs),
		categories: config.Categories,
		now:        config.Now,
		batchSize:  config.BatchSize,
	}
}

// ClassifyBasic routes every file by the category table alone.
// An empty destination means the source folder itself.
func (e *ClassificationEngine) ClassifyBasic(ctx context.Context, source, destination string, progress model.ProgressFunc) (*model.ClassificationResult, error) {
	return e.run(ctx, model.ModeBasic, source, destination, nil, progress)
}

// ClassifyAdvanced routes each file by the first matching rule, falling back
// to the category table. The rules are copied and normalized before the run
// starts.
func (e *ClassificationEngine) ClassifyAdvanced(ctx context.Context, source string, rules []model.ClassificationRule, destination string, progress model.ProgressFunc) (*model.ClassificationResult, error) {
	return e.run(ctx, model.ModeAdvanced, source, destination, snapshotRules(rules), progress)
}

// Preview reports where each file would go without touching the filesystem.
// Pass nil rules for basic routing.
func (e *ClassificationEngine) Preview(ctx context.Context, source string, rules []model.ClassificationRule, destination string) ([]model.MovedFile, error) {
	root, dest, err := e.resolveRoots(source, destination)
	if err != nil {
		return nil, err
	}
	rules = snapshotRules(rules)

	var planned []model.MovedFile
	for _, path := range e.collectFiles(ctx, root) {
		if ctx.Err() != nil {
			break
		}
		folder, ruleName, ok := e.route(path, rules)
		if !ok {
			continue
		}
		targetDir := filepath.Join(dest, folder)
		if filepath.Dir(path) == targetDir {
			continue
		}
		planned = append(planned, model.MovedFile{
			Source:      path,
			Destination: filepath.Join(targetDir, filepath.Base(path)),
			Rule:        ruleName,
		})
	}
	return planned, nil
}

func (e *ClassificationEngine) run(ctx context.Context, mode model.ClassificationMode, source, destination string, rules []model.ClassificationRule, progress model.ProgressFunc) (*model.ClassificationResult, error) {
	root, dest, err := e.resolveRoots(source, destination)
	if err != nil {
		return nil, err
	}

	slog.Info("Starting classification",
		"mode", mode,
		"source", root,
		"destination", dest,
		"rules", len(rules))

	files := e.collectFiles(ctx, root)
	total := len(files)

	result := &model.ClassificationResult{
		Mode:         mode,
		FilesScanned: total,
	}
	if mode == model.ModeAdvanced {
		result.RulesConsidered = make([]string, len(rules))
		for i, r := range rules {
			result.RulesConsidered[i] = r.Name
		}
	}

	for i, path := range files {
		processed := i + 1
		if processed%e.batchSize == 0 {
			if ctx.Err() != nil {
				result.Cancelled = true
				slog.Warn("Classification cancelled", "processed", i, "total", total)
				break
			}
			report(progress, min(0.95, float64(processed)/float64(max(1, total))))
		}

		e.classifyFile(path, rules, dest, result)
	}

	result.FilesMoved = len(result.Moves)
	e.record(ctx, root, dest, result)

	slog.Info("Classification finished",
		"mode", mode,
		"moved", result.FilesMoved,
		"skipped", result.FilesSkipped,
		"failed", result.FilesFailed,
		"cancelled", result.Cancelled)

	if !result.Cancelled {
		report(progress, 1.0)
	}
	return result, nil
}

func (e *ClassificationEngine) classifyFile(path string, rules []model.ClassificationRule, dest string, result *model.ClassificationResult) {
	folder, ruleName, ok := e.route(path, rules)
	if !ok {
		result.FilesSkipped++
		return
	}

	targetDir := filepath.Join(dest, folder)
	if filepath.Dir(path) == targetDir {
		// Already organized; renaming it onto itself would only add a suffix.
		result.FilesSkipped++
		return
	}

	if err := e.fs.MkdirAll(targetDir, 0o755); err != nil {
		result.FilesFailed++
		slog.Debug("Failed to create destination folder", "folder", targetDir, "error", err)
		return
	}

	target, err := fsutil.UniqueFilePath(e.fs, targetDir, filepath.Base(path), e.now())
	if err != nil {
		result.FilesFailed++
		slog.Debug("Failed to pick destination name", "file", path, "error", err)
		return
	}

	if err := fsutil.Move(e.fs, path, target); err != nil {
		result.FilesFailed++
		slog.Debug("Failed to move file", "file", path, "target", target, "error", err)
		return
	}

	result.Moves = append(result.Moves, model.MovedFile{
		Source:      path,
		Destination: target,
		Rule:        ruleName,
	})
}

// route picks the destination folder for a file: the first matching rule,
// otherwise its category.
func (e *ClassificationEngine) route(path string, rules []model.ClassificationRule) (folder, ruleName string, ok bool) {
	if rule, matched := e.matcher.First(rules, path); matched {
		return rule.Destination, rule.Name, true
	}
	if category, found := e.categories.Lookup(fsutil.Extension(path)); found {
		return category, model.BasicRuleName, true
	}
	return "", "", false
}

// snapshotRules returns normalized copies so an extension list holding only
// blanks or dots means any extension, whatever path built the rule.
func snapshotRules(rules []model.ClassificationRule) []model.ClassificationRule {
	if rules == nil {
		return nil
	}
	snapshot := make([]model.ClassificationRule, len(rules))
	for i, r := range rules {
		snapshot[i] = r.Normalized()
	}
	return snapshot
}

func (e *ClassificationEngine) resolveRoots(source, destination string) (string, string, error) {
	if source == "" {
		return "", "", common.ErrNoSource
	}
	root, err := fsutil.Abs(source)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", common.ErrInvalidSource, err)
	}

	info, err := e.fs.Stat(root)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", common.ErrInvalidSource, root, err)
	}
	if !info.IsDir() {
		return "", "", fmt.Errorf("%w: %s", common.ErrInvalidSource, root)
	}

	if destination == "" {
		return root, root, nil
	}
	dest, err := fsutil.Abs(destination)
	if err != nil {
		return "", "", err
	}
	return root, dest, nil
}

// collectFiles lists every regular file under root in walk order. Symlinks
// and unreadable directories are skipped.
func (e *ClassificationEngine) collectFiles(ctx context.Context, root string) []string {
	var files []string
	err := afero.Walk(e.fs, root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			slog.Debug("Skipping unreadable path", "path", path, "error", err)
			if info != nil && info.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, fs.SkipDir) {
		slog.Debug("Walk stopped early", "root", root, "error", err)
	}
	return files
}

func (e *ClassificationEngine) record(ctx context.Context, root, dest string, result *model.ClassificationResult) {
	if e.history == nil {
		return
	}

	moved := result.FilesMoved
	entry := model.HistoryEntry{
		Timestamp:  e.now(),
		Type:       model.ActionClassification,
		SourcePath: root,
		DestPath:   dest,
		Detail: model.HistoryDetail{
			Mode:       result.Mode,
			FilesMoved: &moved,
			Rules:      result.RulesConsidered,
			Cancelled:  result.Cancelled,
		},
	}

	// The moves already happened, so a cancelled run still gets its entry.
	if err := e.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		common.LogError(err, "Failed to record classification history", common.Fields{
			"source": root,
			"moved":  moved,
		})
	}
}

func report(progress model.ProgressFunc, fraction float64) {
	if progress != nil {
		progress(fraction)
	}
}
