package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/Veraticus/folderly/internal/cli"
	"github.com/Veraticus/folderly/internal/common"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show what folderly has done",
	}

	cmd.AddCommand(listHistoryCmd())
	cmd.AddCommand(restoreHistoryCmd())

	return cmd
}

func listHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent actions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.history.List(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, err = fmt.Fprintln(out, cli.FormatInfo("No history yet"))
				return err
			}

			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{
					strconv.FormatInt(e.ID, 10),
					e.Timestamp.Local().Format("2006-01-02 15:04"),
					e.SourcePath,
					cli.DescribeEntry(e),
				}
			}
			return writeTable(out, []string{"ID", "When", "Source", "Action"}, []int{4, 16, 30, 40}, rows)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of entries to show (default 200)")
	return cmd
}

func restoreHistoryCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore the folder removed by a history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return common.NewUserError("The history ID must be a number", err)
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			entry, err := a.history.Get(ctx, id)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("No history entry %d", id), err)
				}
				return err
			}
			if !entry.Restorable() {
				return common.NewUserError(fmt.Sprintf("History entry %d did not quarantine a folder", id), common.ErrNotQuarantined)
			}

			parent := to
			if parent == "" {
				parent = filepath.Dir(entry.SourcePath)
			}
			return restoreFolder(cmd, a.folders(), entry.QuarantinePath, parent)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "parent folder to restore into (default: where it was removed from)")
	return cmd
}
