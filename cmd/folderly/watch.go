package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/folderly/internal/cli"
	"github.com/Veraticus/folderly/internal/common"
	"github.com/Veraticus/folderly/internal/model"
	"github.com/Veraticus/folderly/internal/task"
	"github.com/Veraticus/folderly/internal/watch"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	var (
		dest  string
		basic bool
	)

	cmd := &cobra.Command{
		Use:   "watch <source>",
		Short: "Classify new files as they arrive",
		Long: `Classify the source folder once, then again whenever new files settle in it.
The quiet period is set by watch.debounce (2s by default).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			source, destDir, err := absPaths(args[0], dest)
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := requireDir(a, source); err != nil {
				return userFacing(err)
			}

			target := destDir
			if target == "" {
				target = source
			}
			var rules []model.ClassificationRule
			if !basic {
				if rules, err = loadRules(ctx, a.rules); err != nil {
					return err
				}
			}

			coordinator := task.NewCoordinator()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			ctx = cli.NewInterruptHandler(cmd.ErrOrStderr()).HandleInterrupts(ctx, func() {
				coordinator.Stop()
				cancel()
			})

			out := cmd.OutOrStdout()
			trigger := func(ctx context.Context) error {
				return startRun(ctx, coordinator, a, source, destDir, basic, out)
			}
			if err := trigger(ctx); err != nil {
				return userFacing(err)
			}
			if _, err := fmt.Fprintln(out, cli.FormatInfo("Watching "+source+" (Ctrl-C to stop)")); err != nil {
				return err
			}

			w := watch.New(source, trigger,
				watch.WithDebounce(a.cfg.WatchDebounce),
				watch.WithIgnore(watch.DestinationDirs(target, model.DefaultCategories, rules)...),
			)
			watchErr := w.Run(ctx)

			waitIdle(coordinator)
			return userFacing(watchErr)
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "destination folder (default: the source folder)")
	cmd.Flags().BoolVar(&basic, "basic", false, "ignore rules and sort by file type only")
	return cmd
}

// startRun launches a classification through the coordinator and prints a
// summary when it moved anything. It fails with common.ErrAlreadyRunning
// while a previous run is in flight.
func startRun(ctx context.Context, coordinator *task.Coordinator, a *app, source, dest string, basic bool, out io.Writer) error {
	var result *model.ClassificationResult
	t, err := coordinator.Run(ctx, "classify", a.classifyOp(source, dest, basic, nil, &result))
	if err != nil {
		return err
	}

	go func() {
		if err := t.Wait(); err != nil && t.Status() == task.StatusFailed {
			if common.IsPrecondition(err) {
				common.LogInfo("Classification refused", common.Fields{"source": source, "reason": err.Error()})
				return
			}
			common.LogError(err, "Classification failed", common.Fields{"source": source})
			return
		}
		if result != nil && result.FilesMoved > 0 {
			if _, err := fmt.Fprintln(out, cli.ClassificationSummary(result, false)); err != nil {
				common.LogError(err, "Failed to print summary", common.Fields{"source": source})
			}
		}
	}()
	return nil
}

// waitIdle blocks until the coordinator's current task, if any, returns.
func waitIdle(coordinator *task.Coordinator) {
	if t := coordinator.Current(); t != nil {
		_ = t.Wait()
	}
}

// requireDir fails with common.ErrInvalidSource unless path is a directory.
func requireDir(a *app, path string) error {
	info, err := a.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrInvalidSource, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", common.ErrInvalidSource, path)
	}
	return nil
}
