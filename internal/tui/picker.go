// Package tui provides the interactive empty-folder picker.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Veraticus/folderly/internal/model"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// defaultVisible is the list height before the terminal reports its size.
const defaultVisible = 15

// Picker is a bubbletea model for choosing which empty folders to remove.
type Picker struct {
	theme      Theme
	help       help.Model
	keymap     KeyMap
	root       string
	candidates []model.EmptyDirectoryCandidate
	cursor     int
	offset     int
	height     int
	confirmed  bool
	quitting   bool
}

// NewPicker creates a picker over a copy of candidates.
func NewPicker(root string, candidates []model.EmptyDirectoryCandidate) Picker {
	return Picker{
		theme:      DefaultTheme,
		help:       help.New(),
		keymap:     DefaultKeyMap(),
		root:       root,
		candidates: append([]model.EmptyDirectoryCandidate(nil), candidates...),
		height:     defaultVisible,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Title, counter and help take six lines.
		p.height = max(3, msg.Height-6)
		p.help.Width = msg.Width
		p.scroll()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keymap.Quit):
			p.quitting = true
			return p, tea.Quit
		case key.Matches(msg, p.keymap.Confirm):
			p.confirmed = true
			p.quitting = true
			return p, tea.Quit
		case key.Matches(msg, p.keymap.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, p.keymap.Down):
			if p.cursor < len(p.candidates)-1 {
				p.cursor++
			}
		case key.Matches(msg, p.keymap.Home):
			p.cursor = 0
		case key.Matches(msg, p.keymap.End):
			p.cursor = max(0, len(p.candidates)-1)
		case key.Matches(msg, p.keymap.Toggle):
			if len(p.candidates) > 0 {
				p.candidates[p.cursor].Selected = !p.candidates[p.cursor].Selected
			}
		case key.Matches(msg, p.keymap.SelectAll):
			p.setAll(true)
		case key.Matches(msg, p.keymap.DeselectAll):
			p.setAll(false)
		}
		p.scroll()
	}
	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	if p.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(p.theme.Title.Render(fmt.Sprintf("Empty folders under %s", p.root)))
	b.WriteString("\n")

	if len(p.candidates) == 0 {
		b.WriteString(p.theme.Muted.Render("Nothing to remove."))
	}

	end := min(len(p.candidates), p.offset+p.height)
	for i := p.offset; i < end; i++ {
		c := p.candidates[i]

		cursor := "  "
		if i == p.cursor {
			cursor = p.theme.Cursor.Render("> ")
		}
		box := "[ ]"
		if c.Selected {
			box = p.theme.Checked.Render("[x]")
		}

		line := fmt.Sprintf("%s%s %s", cursor, box, p.theme.Path.Render(p.display(c.Path)))
		if i == p.cursor {
			line = p.theme.Selected.Render(line)
		}
		b.WriteString(line + "\n")
	}

	footer := p.theme.Muted.Render(fmt.Sprintf("%d of %d selected", p.selectedCount(), len(p.candidates)))
	b.WriteString(p.theme.Footer.Render(footer))
	b.WriteString("\n" + p.help.View(p.keymap))
	return b.String()
}

// Confirmed reports whether the user accepted the selection.
func (p Picker) Confirmed() bool {
	return p.confirmed
}

// Selected returns the candidates left selected.
func (p Picker) Selected() []model.EmptyDirectoryCandidate {
	return model.SelectedCandidates(p.candidates)
}

func (p *Picker) setAll(selected bool) {
	for i := range p.candidates {
		p.candidates[i].Selected = selected
	}
}

func (p Picker) selectedCount() int {
	n := 0
	for _, c := range p.candidates {
		if c.Selected {
			n++
		}
	}
	return n
}

// scroll keeps the cursor inside the visible window.
func (p *Picker) scroll() {
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+p.height {
		p.offset = p.cursor - p.height + 1
	}
}

func (p Picker) display(path string) string {
	if rel, err := filepath.Rel(p.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
