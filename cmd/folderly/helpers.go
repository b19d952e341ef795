package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/folderly/internal/cli"
	"github.com/Veraticus/folderly/internal/common"
	"github.com/Veraticus/folderly/internal/config"
	"github.com/Veraticus/folderly/internal/engine"
	"github.com/Veraticus/folderly/internal/folders"
	"github.com/Veraticus/folderly/internal/fsutil"
	"github.com/Veraticus/folderly/internal/model"
	"github.com/Veraticus/folderly/internal/storage"
	"github.com/Veraticus/folderly/internal/task"
	"github.com/spf13/afero"
)

// app bundles what the commands share: settings, the database opened for the
// configured user and the filesystem.
type app struct {
	fs      afero.Fs
	cfg     *config.Organizer
	store   *storage.SQLiteStorage
	rules   *storage.RuleRepository
	history *storage.HistoryRepository
}

// openApp loads the configuration and opens the migrated database.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadOrganizerConfig()
	if err != nil {
		return nil, common.NewUserError("Invalid configuration", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &app{
		fs:      afero.NewOsFs(),
		cfg:     cfg,
		store:   store,
		rules:   storage.NewRuleRepository(store, cfg.User),
		history: storage.NewHistoryRepository(store, cfg.User),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

func (a *app) engine() *engine.ClassificationEngine {
	return engine.New(a.fs, a.history)
}

func (a *app) folders() *folders.Manager {
	return folders.New(a.fs, a.history, folders.WithQuarantine(a.cfg.Quarantine()))
}

// exclusions merges the configured exclusions with the ones given on the command line.
func (a *app) exclusions(extra []string) []string {
	out := append([]string(nil), a.cfg.Exclusions...)
	return append(out, extra...)
}

// classifyOp builds the coordinator operation for one classification run.
// The result is stored in *result when the engine returns.
func (a *app) classifyOp(source, dest string, basic bool, progress model.ProgressFunc, result **model.ClassificationResult) task.Op {
	eng := a.engine()
	return func(ctx context.Context) error {
		var (
			res *model.ClassificationResult
			err error
		)
		if basic {
			res, err = eng.ClassifyBasic(ctx, source, dest, progress)
		} else {
			// Rules are read fresh for every run.
			var rules []model.ClassificationRule
			rules, err = loadRules(ctx, a.rules)
			if err != nil {
				return err
			}
			res, err = eng.ClassifyAdvanced(ctx, source, rules, dest, progress)
		}
		if err != nil {
			return err
		}
		if result != nil {
			*result = res
		}
		return nil
	}
}

// absPaths resolves the folder arguments against the working directory so
// history never records a relative location. An empty dest stays empty.
func absPaths(source, dest string) (string, string, error) {
	abs, err := fsutil.Abs(source)
	if err != nil {
		return "", "", err
	}
	if dest == "" {
		return abs, "", nil
	}
	absDest, err := fsutil.Abs(dest)
	if err != nil {
		return "", "", err
	}
	return abs, absDest, nil
}

// writeTable prints header in bold followed by rows, aligned in columns.
// When widths is set a dashed line of those widths separates the header.
func writeTable(out io.Writer, header []string, widths []int, rows [][]string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	bold := make([]string, len(header))
	for i, h := range header {
		bold[i] = cli.BoldStyle.Render(h)
	}
	if _, err := fmt.Fprintln(w, strings.Join(bold, "\t")); err != nil {
		return err
	}
	if len(widths) > 0 {
		dashes := make([]string, len(widths))
		for i, n := range widths {
			dashes[i] = strings.Repeat("-", n)
		}
		if _, err := fmt.Fprintln(w, strings.Join(dashes, "\t")); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}

// userFacing turns precondition failures into messages for the terminal.
func userFacing(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrNoSource):
		return common.NewUserError("Choose a source folder first", err)
	case errors.Is(err, common.ErrInvalidSource):
		return common.NewUserError("The source is not an existing folder", err)
	case errors.Is(err, common.ErrAlreadyRunning):
		return common.NewUserError("Another operation is still running", err)
	case errors.Is(err, common.ErrEmptySelection):
		return common.NewUserError("No folders selected", err)
	case errors.Is(err, common.ErrNotQuarantined):
		return common.NewUserError("That folder is not in the quarantine", err)
	case errors.Is(err, common.ErrInvalidRule):
		return common.NewUserError("Invalid rule", err)
	}
	return err
}
