package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Veraticus/folderly/internal/cli"
	"github.com/Veraticus/folderly/internal/common"
	"github.com/Veraticus/folderly/internal/folders"
	"github.com/Veraticus/folderly/internal/model"
	"github.com/Veraticus/folderly/internal/service"
	"github.com/Veraticus/folderly/internal/task"
	"github.com/Veraticus/folderly/internal/tui"
	"github.com/spf13/cobra"
)

func emptyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "empty",
		Short: "Find and remove empty folders",
		Long: `Find folders that contain nothing, remove the ones you choose and bring them
back from the quarantine if needed.

Version control and tool folders (.git, node_modules, ...) are never touched.`,
	}

	cmd.AddCommand(detectEmptyCmd())
	cmd.AddCommand(cleanEmptyCmd())
	cmd.AddCommand(restoreEmptyCmd())
	cmd.AddCommand(quarantineCmd())
	cmd.AddCommand(purgeCmd())

	return cmd
}

func detectEmptyCmd() *cobra.Command {
	var exclude []string

	cmd := &cobra.Command{
		Use:   "detect <root>",
		Short: "List empty folders under root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			root, _, err := absPaths(args[0], "")
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			candidates, err := a.folders().Detect(ctx, root, a.exclusions(exclude))
			if err != nil {
				return userFacing(err)
			}

			out := cmd.OutOrStdout()
			if len(candidates) == 0 {
				_, err = fmt.Fprintln(out, cli.FormatInfo("No empty folders"))
				return err
			}
			if _, err := fmt.Fprintln(out, cli.FormatTitle("Empty folders under "+root)); err != nil {
				return err
			}
			for _, c := range candidates {
				if _, err := fmt.Fprintln(out, c.Path); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d empty folders", len(candidates))))
			return err
		},
	}

	cmd.Flags().StringSliceVarP(&exclude, "exclude", "x", nil, "extra folder names to skip")
	return cmd
}

func cleanEmptyCmd() *cobra.Command {
	var (
		exclude   []string
		yes       bool
		permanent bool
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "clean <root>",
		Short: "Remove empty folders under root",
		Long: `Detect the empty folders under root, let you pick which ones to remove and
move them to the quarantine. Use --permanent to delete them outright.

Examples:
  folderly empty clean ~/Projects         # pick interactively
  folderly empty clean ~/Projects --yes   # remove every empty folder`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			root, _, err := absPaths(args[0], "")
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			quarantine := a.cfg.Quarantine()
			if permanent {
				quarantine = ""
			}
			manager := folders.New(a.fs, a.history, folders.WithQuarantine(quarantine))

			candidates, err := manager.Detect(ctx, root, a.exclusions(exclude))
			if err != nil {
				return userFacing(err)
			}
			if len(candidates) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No empty folders"))
				return err
			}

			selected := candidates
			if !yes {
				var ok bool
				selected, ok, err = tui.PickCandidates(ctx, root, candidates, cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if !ok {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing removed"))
					return err
				}
			}

			coordinator := task.NewCoordinator()
			ctx = cli.NewInterruptHandler(cmd.ErrOrStderr()).HandleInterrupts(ctx, coordinator.Stop)

			reporter := cli.NewProgressReporter(cmd.ErrOrStderr(), "Removing")
			var removed []string
			t, err := coordinator.Run(ctx, "delete-empty", func(ctx context.Context) error {
				var deleteErr error
				removed, deleteErr = manager.Delete(ctx, selected, reporter.Func())
				return deleteErr
			})
			if err != nil {
				return userFacing(err)
			}
			runErr := t.Wait()
			reporter.Close()
			if runErr != nil && t.Status() == task.StatusFailed {
				return userFacing(runErr)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FolderRemovalSummary(removed, len(selected), manager.QuarantineDir(), verbose))
			return err
		},
	}

	cmd.Flags().StringSliceVarP(&exclude, "exclude", "x", nil, "extra folder names to skip")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "remove every empty folder without asking")
	cmd.Flags().BoolVar(&permanent, "permanent", false, "delete instead of moving to the quarantine")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "report folders that could not be removed")
	return cmd
}

func restoreEmptyCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "restore <quarantined-path>",
		Short: "Move a quarantined folder back",
		Long: `Move a folder out of the quarantine. It goes back to where it was removed
from unless --to names another parent folder; an existing folder of the same
name gets a _1, _2, ... suffix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			parent := to
			if parent == "" {
				if parent, err = originalParent(ctx, a.history, path); err != nil {
					return err
				}
			}
			return restoreFolder(cmd, a.folders(), path, parent)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "parent folder to restore into")
	return cmd
}

// originalParent finds where a quarantined folder was removed from.
func originalParent(ctx context.Context, history service.HistoryReader, quarantined string) (string, error) {
	entries, err := history.List(ctx, service.DefaultHistoryLimit)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.Restorable() && filepath.Clean(e.QuarantinePath) == quarantined {
			return filepath.Dir(e.SourcePath), nil
		}
	}
	return "", common.NewUserError("The original location is unknown, pass --to", common.ErrNotFound)
}

func restoreFolder(cmd *cobra.Command, manager *folders.Manager, path, parent string) error {
	target, err := manager.Restore(cmd.Context(), path, parent)
	if err != nil {
		return userFacing(err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Restored to "+target))
	return err
}

func quarantineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quarantine",
		Short: "List quarantined folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if a.cfg.Quarantine() == "" {
				_, err = fmt.Fprintln(out, cli.FormatWarning("Quarantine is disabled"))
				return err
			}

			items, err := a.folders().ListQuarantine()
			if err != nil {
				return err
			}
			if len(items) == 0 {
				_, err = fmt.Fprintln(out, cli.FormatInfo("The quarantine is empty"))
				return err
			}
			return printQuarantine(cmd, items)
		},
	}
}

func printQuarantine(cmd *cobra.Command, items []model.QuarantinedDirectory) error {
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = []string{item.RemovedAt.Local().Format("2006-01-02 15:04"), item.Name, item.Path}
	}
	return writeTable(cmd.OutOrStdout(), []string{"Removed", "Name", "Path"}, []int{16, 20, 40}, rows)
}

func purgeCmd() *cobra.Command {
	var (
		olderThan time.Duration
		all       bool
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Permanently erase old quarantined folders",
		Long:  `Erase quarantined folders older than the retention period (quarantine.retention, 720h by default).`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			age := a.cfg.QuarantineRetention
			switch {
			case all:
				age = 0
			case cmd.Flags().Changed("older-than"):
				age = olderThan
			}

			n, err := a.folders().Purge(ctx, age)
			if err != nil {
				return common.NewUserError("Cannot purge the quarantine", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Erased %d quarantined removals", n)))
			return err
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "erase removals older than this (default: quarantine.retention)")
	cmd.Flags().BoolVar(&all, "all", false, "erase everything in the quarantine")
	return cmd
}
