package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Veraticus/folderly/internal/cli"
	"github.com/Veraticus/folderly/internal/common"
	"github.com/Veraticus/folderly/internal/model"
	"github.com/Veraticus/folderly/internal/schedule"
	"github.com/Veraticus/folderly/internal/task"
	"github.com/spf13/cobra"
)

func scheduleCmd() *cobra.Command {
	var (
		spec    string
		dest    string
		basic   bool
		noPurge bool
		now     bool
	)

	cmd := &cobra.Command{
		Use:   "schedule <source>",
		Short: "Classify a folder on a cron schedule",
		Long: `Classify the source folder at every activation of a cron expression
(schedule.cron, hourly by default) and purge quarantined folders older than
quarantine.retention.

Examples:
  folderly schedule ~/Downloads                    # every hour
  folderly schedule ~/Downloads --cron "0 9 * * *" # every day at 9am`,
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
			if !cmd.Flags().Changed("cron") {
				spec = a.cfg.ScheduleCron
			}

			coordinator := task.NewCoordinator()
			out := cmd.OutOrStdout()
			job := func(ctx context.Context) error {
				return runScheduled(ctx, coordinator, a, source, destDir, basic, !noPurge, out)
			}

			scheduler, err := schedule.New(spec, job)
			if err != nil {
				return common.NewUserError("Invalid cron expression", err)
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			ctx = cli.NewInterruptHandler(cmd.ErrOrStderr()).HandleInterrupts(ctx, func() {
				coordinator.Stop()
				cancel()
			})

			if now {
				if err := job(ctx); err != nil {
					return userFacing(err)
				}
			}

			if _, err := fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Next run at %s (Ctrl-C to stop)", scheduler.Next().Format("Mon Jan 2 15:04")))); err != nil {
				return err
			}
			err = scheduler.Run(ctx)
			waitIdle(coordinator)
			return err
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "cron expression (default: schedule.cron)")
	cmd.Flags().StringVarP(&dest, "dest", "d", "", "destination folder (default: the source folder)")
	cmd.Flags().BoolVar(&basic, "basic", false, "ignore rules and sort by file type only")
	cmd.Flags().BoolVar(&noPurge, "no-purge", false, "keep quarantined folders regardless of age")
	cmd.Flags().BoolVar(&now, "now", false, "also run once immediately")
	return cmd
}

// runScheduled classifies source and then purges the quarantine, as one
// coordinator task, and waits for it.
func runScheduled(ctx context.Context, coordinator *task.Coordinator, a *app, source, dest string, basic, purge bool, out io.Writer) error {
	var result *model.ClassificationResult
	classify := a.classifyOp(source, dest, basic, nil, &result)
	manager := a.folders()

	t, err := coordinator.Run(ctx, "scheduled", func(ctx context.Context) error {
		if err := classify(ctx); err != nil {
			return err
		}
		if !purge || a.cfg.Quarantine() == "" || a.cfg.QuarantineRetention <= 0 {
			return nil
		}
		n, err := manager.Purge(ctx, a.cfg.QuarantineRetention)
		if err != nil {
			return fmt.Errorf("purge quarantine: %w", err)
		}
		if n > 0 {
			common.LogInfo("Purged quarantine", common.Fields{"erased": n})
		}
		return nil
	})
	if err != nil {
		return err
	}

	runErr := t.Wait()
	if result != nil {
		if _, err := fmt.Fprintln(out, cli.ClassificationSummary(result, false)); err != nil {
			return err
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
