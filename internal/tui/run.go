package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/folderly/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// PickCandidates lets the user choose which candidates to remove. It returns
// the chosen candidates and false when the user cancelled.
func PickCandidates(ctx context.Context, root string, candidates []model.EmptyDirectoryCandidate, in io.Reader, out io.Writer) ([]model.EmptyDirectoryCandidate, bool, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}

	final, err := tea.NewProgram(NewPicker(root, candidates), opts...).Run()
	if err != nil {
		return nil, false, fmt.Errorf("failed to run folder picker: %w", err)
	}

	picker, ok := final.(Picker)
	if !ok || !picker.Confirmed() {
		return nil, false, nil
	}
	return picker.Selected(), true, nil
}
