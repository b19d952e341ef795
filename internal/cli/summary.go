package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/folderly/internal/model"
)

// ClassificationSummary renders the outcome of a classification run. The
// moved-files line is always present; verbose adds the remaining counters.
func ClassificationSummary(result *model.ClassificationResult, verbose bool) string {
	var b strings.Builder
	b.WriteString(FormatSuccess(plural(result.FilesMoved, "file", "files") + " moved"))

	if result.Cancelled {
		b.WriteString("\n" + FormatWarning("Stopped before every file was processed"))
	}

	if verbose {
		b.WriteString("\n" + SubtleStyle.Render(fmt.Sprintf(
			"scanned %d, skipped %d, failed %d", result.FilesScanned, result.FilesSkipped, result.FilesFailed)))

		counts := result.MovedByRule()
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(fmt.Sprintf("\n  %s %s", BoldStyle.Render(name), SubtleStyle.Render(fmt.Sprintf("%d", counts[name]))))
		}
	}
	return b.String()
}

// FolderRemovalSummary renders the outcome of an empty-folder cleanup.
func FolderRemovalSummary(removed []string, selected int, quarantine string, verbose bool) string {
	var b strings.Builder
	b.WriteString(FormatSuccess(plural(len(removed), "folder", "folders") + " removed"))

	if quarantine != "" && len(removed) > 0 {
		b.WriteString("\n" + FormatInfo("Recoverable from "+quarantine))
	}
	if verbose {
		if failed := selected - len(removed); failed > 0 {
			b.WriteString("\n" + FormatWarning(plural(failed, "folder", "folders")+" could not be removed"))
		}
	}
	return b.String()
}

// DescribeEntry renders the detail column of a history entry.
func DescribeEntry(e model.HistoryEntry) string {
	switch e.Type {
	case model.ActionClassification:
		moved := 0
		if e.Detail.FilesMoved != nil {
			moved = *e.Detail.FilesMoved
		}
		desc := fmt.Sprintf("%s, %s moved", e.Detail.Mode, plural(moved, "file", "files"))
		if len(e.Detail.Rules) > 0 {
			desc += " (" + strings.Join(e.Detail.Rules, ", ") + ")"
		}
		if e.Detail.Cancelled {
			desc += " [stopped]"
		}
		return desc
	case model.ActionEmptyFolder:
		switch e.Detail.Action {
		case model.FolderActionDelete:
			if e.Restorable() {
				return "removed " + e.SourcePath + " (restorable)"
			}
			return "removed " + e.SourcePath
		case model.FolderActionRestore:
			return "restored to " + e.DestPath
		case model.FolderActionPurge:
			return "purged " + plural(e.Detail.Count, "quarantined folder", "quarantined folders")
		}
	}
	return string(e.Type)
}

// DescribeRule renders a rule's constraints on one line.
func DescribeRule(r model.ClassificationRule) string {
	var parts []string
	if len(r.Extensions) > 0 {
		parts = append(parts, strings.Join(r.Extensions, ","))
	} else {
		parts = append(parts, "any extension")
	}
	if r.MinSizeKB != nil {
		parts = append(parts, fmt.Sprintf(">= %d KB", *r.MinSizeKB))
	}
	if r.MaxSizeKB != nil {
		parts = append(parts, fmt.Sprintf("<= %d KB", *r.MaxSizeKB))
	}
	if r.From != nil {
		parts = append(parts, "from "+model.FormatDate(r.From))
	}
	if r.To != nil {
		parts = append(parts, "to "+model.FormatDate(r.To))
	}
	return strings.Join(parts, "; ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
