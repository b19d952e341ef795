package main

import (
	"fmt"

	"github.com/Veraticus/folderly/internal/cli"
	"github.com/Veraticus/folderly/internal/model"
	"github.com/Veraticus/folderly/internal/task"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	var (
		dest    string
		basic   bool
		verbose bool
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "classify <source>",
		Short: "Sort the files of a folder into subfolders",
		Long: `Move every file under the source folder into a subfolder chosen by the
first matching rule, or by its file type when no rule matches.

Examples:
  folderly classify ~/Downloads                 # rules, then file type
  folderly classify ~/Downloads --basic         # file type only
  folderly classify ~/Downloads --dest ~/Sorted # sort into another folder
  folderly classify ~/Downloads --dry-run       # show what would move`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			source, target, err := absPaths(args[0], dest)
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if dryRun {
				var rules []model.ClassificationRule
				if !basic {
					if rules, err = loadRules(ctx, a.rules); err != nil {
						return err
					}
				}
				planned, err := a.engine().Preview(ctx, source, rules, target)
				if err != nil {
					return userFacing(err)
				}
				return printPlan(cmd, planned)
			}

			coordinator := task.NewCoordinator()
			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx = handler.HandleInterrupts(ctx, coordinator.Stop)

			reporter := cli.NewProgressReporter(cmd.ErrOrStderr(), "Classifying")
			var result *model.ClassificationResult
			t, err := coordinator.Run(ctx, "classify", a.classifyOp(source, target, basic, reporter.Func(), &result))
			if err != nil {
				return userFacing(err)
			}
			runErr := t.Wait()
			reporter.Close()

			if result == nil {
				return userFacing(runErr)
			}
			summary := cli.ClassificationSummary(result, verbose)
			if verbose {
				summary = cli.RenderBox("Classification of "+source, summary)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), summary)
			return err
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "destination folder (default: the source folder)")
	cmd.Flags().BoolVar(&basic, "basic", false, "ignore rules and sort by file type only")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show skipped and failed counts")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the planned moves without moving anything")

	return cmd
}

func printPlan(cmd *cobra.Command, planned []model.MovedFile) error {
	out := cmd.OutOrStdout()
	if len(planned) == 0 {
		_, err := fmt.Fprintln(out, cli.FormatInfo("Nothing to move"))
		return err
	}

	rows := make([][]string, len(planned))
	for i, m := range planned {
		rows[i] = []string{m.Source, m.Destination, m.Rule}
	}
	if err := writeTable(out, []string{"File", "Destination", "Rule"}, nil, rows); err != nil {
		return err
	}

	_, err := fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d files would move", len(planned))))
	return err
}
