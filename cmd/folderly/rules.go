package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/folderly/internal/cli"
	"github.com/Veraticus/folderly/internal/common"
	"github.com/Veraticus/folderly/internal/model"
	"github.com/Veraticus/folderly/internal/pattern"
	"github.com/Veraticus/folderly/internal/rulefile"
	"github.com/Veraticus/folderly/internal/service"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage classification rules",
		Long: `List, add, remove, import and export the rules used by 'folderly classify'.

Rules are tried in order; the first rule whose extension, size and date
constraints all hold decides the destination folder.`,
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(addRuleCmd())
	cmd.AddCommand(removeRuleCmd())
	cmd.AddCommand(importRulesCmd())
	cmd.AddCommand(exportRulesCmd())
	cmd.AddCommand(resetRulesCmd())

	return cmd
}

// loadRules returns the stored rules, seeding the examples for a new user.
func loadRules(ctx context.Context, store service.RuleStore) ([]model.ClassificationRule, error) {
	return pattern.LoadOrSeed(ctx, store, time.Now())
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			rules, err := loadRules(ctx, a.rules)
			if err != nil {
				return err
			}
			return printRules(cmd, rules)
		},
	}
}

func printRules(cmd *cobra.Command, rules []model.ClassificationRule) error {
	out := cmd.OutOrStdout()
	if len(rules) == 0 {
		_, err := fmt.Fprintln(out, cli.FormatInfo("No rules. Use 'folderly rules add' to create one."))
		return err
	}

	rows := make([][]string, len(rules))
	for i, r := range rules {
		rows[i] = []string{strconv.Itoa(i + 1), r.Name, r.Destination, cli.DescribeRule(r)}
	}
	return writeTable(out, []string{"#", "Name", "Folder", "Matches"}, []int{2, 20, 20, 30}, rows)
}

func addRuleCmd() *cobra.Command {
	var (
		dest       string
		extensions []string
		minKB      int64
		maxKB      int64
		from       string
		to         string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Append a rule",
		Long: `Append a rule to the end of the list.

Examples:
  folderly rules add "Big images" --dest BigImages --ext jpg,png --min-kb 1000
  folderly rules add "Old documents" --dest Archive --ext pdf --to 2024-12-31`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rule := model.ClassificationRule{
				Name:        args[0],
				Destination: dest,
				Extensions:  extensions,
			}
			if cmd.Flags().Changed("min-kb") {
				rule.MinSizeKB = &minKB
			}
			if cmd.Flags().Changed("max-kb") {
				rule.MaxSizeKB = &maxKB
			}
			var err error
			if rule.From, err = parseDateFlag("from", from); err != nil {
				return err
			}
			if rule.To, err = parseDateFlag("to", to); err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			rules, err := loadRules(ctx, a.rules)
			if err != nil {
				return err
			}
			set := pattern.NewRuleSet(rules)
			if err := set.Add(rule); err != nil {
				return userFacing(err)
			}
			if err := a.rules.Save(ctx, set.Snapshot()); err != nil {
				return fmt.Errorf("failed to save rules: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added rule %q (%d rules)", rule.Name, set.Len())))
			return err
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "destination subfolder name (required)")
	cmd.Flags().StringSliceVarP(&extensions, "ext", "e", nil, "extensions to match, comma separated (default: any)")
	cmd.Flags().Int64Var(&minKB, "min-kb", 0, "minimum size in KB")
	cmd.Flags().Int64Var(&maxKB, "max-kb", 0, "maximum size in KB")
	cmd.Flags().StringVar(&from, "from", "", "earliest modification date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "latest modification date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("dest")

	return cmd
}

func parseDateFlag(name, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("--%s must be a date like 2024-01-31", name), err)
	}
	return &d, nil
}

func removeRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a rule by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			rules, err := a.rules.Load(ctx)
			if err != nil {
				return err
			}
			set := pattern.NewRuleSet(rules)
			if err := set.Remove(args[0]); err != nil {
				return common.NewUserError(fmt.Sprintf("No rule named %q", args[0]), err)
			}
			if err := a.rules.Save(ctx, set.Snapshot()); err != nil {
				return fmt.Errorf("failed to save rules: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Removed rule %q", args[0])))
			return err
		},
	}
}

func importRulesCmd() *cobra.Command {
	var appendRules bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load rules from a YAML file",
		Long:  `Replace the rule list with the rules of a YAML file, or append them with --append.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			imported, err := rulefile.Load(a.fs, args[0])
			if err != nil {
				return userFacing(err)
			}

			set := pattern.NewRuleSet(nil)
			if appendRules {
				existing, loadErr := a.rules.Load(ctx)
				if loadErr != nil {
					return loadErr
				}
				set.Replace(existing)
			}
			for _, r := range imported {
				if err := set.Add(r); err != nil {
					return userFacing(err)
				}
			}

			if err := a.rules.Save(ctx, set.Snapshot()); err != nil {
				return fmt.Errorf("failed to save rules: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d rules", len(imported))))
			return err
		},
	}

	cmd.Flags().BoolVar(&appendRules, "append", false, "keep the existing rules and add the imported ones after them")
	return cmd
}

func exportRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the rules to a YAML file (stdout when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			rules, err := loadRules(ctx, a.rules)
			if err != nil {
				return err
			}

			if len(args) == 0 || args[0] == "-" {
				return rulefile.Encode(cmd.OutOrStdout(), rules)
			}
			if err := rulefile.Save(a.fs, args[0], rules); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d rules to %s", len(rules), args[0])))
			return err
		},
	}
}

func resetRulesCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace all rules with the examples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !yes {
				ok, err := cli.NewConfirmer(cmd.InOrStdin(), cmd.OutOrStdout()).
					Confirm(ctx, "This will delete every rule and restore the examples. Continue?")
				if err != nil {
					return err
				}
				if !ok {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing changed"))
					return err
				}
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			examples := pattern.ExampleRules(time.Now())
			if err := a.rules.Save(ctx, examples); err != nil {
				return fmt.Errorf("failed to save rules: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Restored %d example rules", len(examples))))
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
